package ja4

import (
	"encoding/binary"
)

// Wire-encoding helpers for building synthetic hello messages in tests.

func u16list(codes ...uint16) []byte {
	out := make([]byte, 2*len(codes))
	for i, c := range codes {
		binary.BigEndian.PutUint16(out[2*i:], c)
	}
	return out
}

func u8vec(body []byte) []byte {
	return append([]byte{byte(len(body))}, body...)
}

func u16vec(body []byte) []byte {
	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(len(body)))
	copy(out[2:], body)
	return out
}

// ext encodes one extension: type, u16 payload length, payload.
func ext(extType uint16, payload []byte) []byte {
	return append(u16list(extType), u16vec(payload)...)
}

func sniExt(name string) []byte {
	entry := append([]byte{0x00}, u16vec([]byte(name))...)
	return ext(extServerName, u16vec(entry))
}

func alpnExt(protos ...string) []byte {
	var list []byte
	for _, p := range protos {
		list = append(list, u8vec([]byte(p))...)
	}
	return ext(extALPN, u16vec(list))
}

func sigAlgsExt(codes ...uint16) []byte {
	return ext(extSignatureAlgorithms, u16vec(u16list(codes...)))
}

func groupsExt(codes ...uint16) []byte {
	return ext(extSupportedGroups, u16vec(u16list(codes...)))
}

func offeredVersionsExt(codes ...uint16) []byte {
	return ext(extSupportedVersions, u8vec(u16list(codes...)))
}

func selectedVersionExt(code uint16) []byte {
	return ext(extSupportedVersions, u16list(code))
}

// handshake wraps a hello body in the handshake header: type tag and 24-bit
// body length.
func handshake(tag byte, body []byte) []byte {
	out := []byte{tag, byte(len(body) >> 16), byte(len(body) >> 8), byte(len(body))}
	return append(out, body...)
}

type helloSpec struct {
	legacyVersion uint16
	sessionID     []byte
	cookie        []byte // DTLS client hellos only
	ciphers       []uint16
	compressions  []byte
	extensions    [][]byte
	noExtensions  bool // omit the extensions block entirely
}

func clientHello(s helloSpec) []byte {
	var body []byte
	body = append(body, u16list(s.legacyVersion)...)
	body = append(body, make([]byte, helloRandomLength)...)
	body = append(body, u8vec(s.sessionID)...)
	if isDTLSVersion(s.legacyVersion) {
		body = append(body, u8vec(s.cookie)...)
	}
	body = append(body, u16vec(u16list(s.ciphers...))...)
	comp := s.compressions
	if comp == nil {
		comp = []byte{0x00}
	}
	body = append(body, u8vec(comp)...)
	if !s.noExtensions {
		var exts []byte
		for _, e := range s.extensions {
			exts = append(exts, e...)
		}
		body = append(body, u16vec(exts)...)
	}
	return handshake(handshakeTypeClientHello, body)
}

func serverHello(s helloSpec) []byte {
	var body []byte
	body = append(body, u16list(s.legacyVersion)...)
	body = append(body, make([]byte, helloRandomLength)...)
	body = append(body, u8vec(s.sessionID)...)
	body = append(body, u16list(s.ciphers[0])...)
	body = append(body, 0x00)
	if !s.noExtensions {
		var exts []byte
		for _, e := range s.extensions {
			exts = append(exts, e...)
		}
		body = append(body, u16vec(exts)...)
	}
	return handshake(handshakeTypeServerHello, body)
}

// typicalClientHello is a TLS 1.3 client hello with one GREASE value in each
// list, used by several tests.
func typicalClientHello() []byte {
	return clientHello(helloSpec{
		legacyVersion: versionTLS12,
		sessionID:     make([]byte, 32),
		ciphers:       []uint16{0x0a0a, 0x1301, 0x1302, 0x1303},
		extensions: [][]byte{
			ext(0x1a1a, nil),
			sniExt("example.com"),
			groupsExt(0x2a2a, 0x001d, 0x0017),
			sigAlgsExt(0x0403, 0x0804),
			alpnExt("h2", "http/1.1"),
			offeredVersionsExt(0xfafa, versionTLS13, versionTLS12),
		},
	})
}
