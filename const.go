package ja4

// Handshake message types.
const (
	handshakeTypeClientHello = 0x01
	handshakeTypeServerHello = 0x02
)

// random(32) is identical for TLS and DTLS hellos.
const helloRandomLength = 32

// Known negotiation version codes. Note that DTLS codes run backwards:
// newer DTLS versions have numerically smaller codes.
const (
	versionSSL2   uint16 = 0x0002
	versionSSL3   uint16 = 0x0300
	versionTLS10  uint16 = 0x0301
	versionTLS11  uint16 = 0x0302
	versionTLS12  uint16 = 0x0303
	versionTLS13  uint16 = 0x0304
	versionDTLS10 uint16 = 0xfeff
	versionDTLS12 uint16 = 0xfefd
	versionDTLS13 uint16 = 0xfefc
)

func isDTLSVersion(v uint16) bool {
	switch v {
	case versionDTLS10, versionDTLS12, versionDTLS13:
		return true
	}
	return false
}

// Extension type codes whose payloads are decoded. Everything else is
// recorded by type code only.
const (
	extServerName          uint16 = 0
	extSupportedGroups     uint16 = 10
	extSignatureAlgorithms uint16 = 13
	extALPN                uint16 = 16
	extSupportedVersions   uint16 = 43
)
