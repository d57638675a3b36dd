package capture

import (
	"encoding/binary"
)

// Builders for synthetic hello bytes used across the package tests.

func u16(v uint16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, v)
	return out
}

func u8vec(body []byte) []byte {
	return append([]byte{byte(len(body))}, body...)
}

func u16vec(body []byte) []byte {
	return append(u16(uint16(len(body))), body...)
}

func extension(extType uint16, payload []byte) []byte {
	return append(u16(extType), u16vec(payload)...)
}

func sniExtension(name string) []byte {
	entry := append([]byte{0x00}, u16vec([]byte(name))...)
	return extension(0, u16vec(entry))
}

func alpnExtension(protos ...string) []byte {
	var list []byte
	for _, p := range protos {
		list = append(list, u8vec([]byte(p))...)
	}
	return extension(16, u16vec(list))
}

func supportedVersionsExtension(versions ...uint16) []byte {
	var list []byte
	for _, v := range versions {
		list = append(list, u16(v)...)
	}
	return extension(43, u8vec(list))
}

// clientHelloMessage builds a TLS 1.3 client hello handshake message: two
// cipher suites, SNI, ALPN h2 and a supported_versions extension.
func clientHelloMessage(sni string) []byte {
	var body []byte
	body = append(body, 0x03, 0x03) // legacy version TLS 1.2
	body = append(body, make([]byte, 32)...)
	body = append(body, u8vec(nil)...) // session id
	body = append(body, u16vec(append(u16(0x1301), u16(0x1302)...))...)
	body = append(body, u8vec([]byte{0x00})...) // compression

	var exts []byte
	exts = append(exts, sniExtension(sni)...)
	exts = append(exts, alpnExtension("h2")...)
	exts = append(exts, supportedVersionsExtension(0x0304)...)
	body = append(body, u16vec(exts)...)

	return handshakeMessage(0x01, body)
}

func serverHelloMessage() []byte {
	var body []byte
	body = append(body, 0x03, 0x03)
	body = append(body, make([]byte, 32)...)
	body = append(body, u8vec(nil)...)
	body = append(body, u16(0x1302)...) // selected cipher
	body = append(body, 0x00)           // compression
	body = append(body, u16vec(extension(43, u16(0x0304)))...)
	return handshakeMessage(0x02, body)
}

func handshakeMessage(tag byte, body []byte) []byte {
	out := []byte{tag, byte(len(body) >> 16), byte(len(body) >> 8), byte(len(body))}
	return append(out, body...)
}

// tlsRecords frames a handshake message as one or more handshake records
// with payloads of at most maxPayload bytes.
func tlsRecords(msg []byte, maxPayload int) []byte {
	var out []byte
	for len(msg) > 0 {
		n := len(msg)
		if n > maxPayload {
			n = maxPayload
		}
		out = append(out, 0x16, 0x03, 0x03)
		out = append(out, u16(uint16(n))...)
		out = append(out, msg[:n]...)
		msg = msg[n:]
	}
	return out
}

// dtlsClientHelloDatagram builds a single-record DTLS 1.2 datagram holding
// an unfragmented client hello.
func dtlsClientHelloDatagram() []byte {
	var body []byte
	body = append(body, 0xfe, 0xfd) // DTLS 1.2
	body = append(body, make([]byte, 32)...)
	body = append(body, u8vec(nil)...)                 // session id
	body = append(body, u8vec([]byte{0xaa, 0xbb})...)  // cookie
	body = append(body, u16vec(append(u16(0xc02b), u16(0xc02f)...))...)
	body = append(body, u8vec([]byte{0x00})...)
	body = append(body, u16vec(supportedVersionsExtension(0xfefc))...)

	return dtlsRecord(dtlsHandshakeFragment(0x01, body))
}

// dtlsHandshakeFragment wraps a hello body in the widened DTLS handshake
// header as a single unfragmented message.
func dtlsHandshakeFragment(tag byte, body []byte) []byte {
	length := len(body)
	var out []byte
	out = append(out, tag)
	out = append(out, byte(length>>16), byte(length>>8), byte(length)) // length
	out = append(out, 0x00, 0x00)                                     // message sequence
	out = append(out, 0x00, 0x00, 0x00)                               // fragment offset
	out = append(out, byte(length>>16), byte(length>>8), byte(length)) // fragment length
	return append(out, body...)
}

func dtlsRecord(fragment []byte) []byte {
	var out []byte
	out = append(out, 0x16, 0xfe, 0xfd)             // handshake record, DTLS 1.2
	out = append(out, 0x00, 0x00)                   // epoch
	out = append(out, make([]byte, 6)...)           // sequence number
	out = append(out, u16(uint16(len(fragment)))...)
	return append(out, fragment...)
}
