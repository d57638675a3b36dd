package ja4

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseClientHello(t *testing.T) {
	fs, err := Parse(RoleClient, ModeStream, typicalClientHello())
	assert.NoError(t, err)

	assert.Equal(t, RoleClient, fs.Role)
	assert.Equal(t, ModeStream, fs.Mode)
	assert.Equal(t, versionTLS12, fs.LegacyVersion)
	assert.False(t, fs.Degraded)

	if diff := cmp.Diff([]uint16{0x0a0a, 0x1301, 0x1302, 0x1303}, fs.Ciphers); diff != "" {
		t.Errorf("ciphers mismatch: %s", diff)
	}

	// Extension types in order of appearance, GREASE included.
	expected := []uint16{0x1a1a, extServerName, extSupportedGroups,
		extSignatureAlgorithms, extALPN, extSupportedVersions}
	if diff := cmp.Diff(expected, fs.Extensions); diff != "" {
		t.Errorf("extensions mismatch: %s", diff)
	}

	name, ok := fs.SNI.Get()
	assert.True(t, ok)
	assert.Equal(t, "example.com", name)

	assert.Equal(t, []uint16{0x2a2a, 0x001d, 0x0017}, fs.SupportedGroups)
	assert.Equal(t, []uint16{0x0403, 0x0804}, fs.SignatureAlgorithms)
	assert.Equal(t, []string{"h2", "http/1.1"}, fs.ALPN)
	assert.Equal(t, []uint16{0xfafa, versionTLS13, versionTLS12}, fs.SupportedVersions)
	assert.True(t, fs.SelectedVersion.IsNone())
}

func TestParseServerHello(t *testing.T) {
	msg := serverHello(helloSpec{
		legacyVersion: versionTLS12,
		ciphers:       []uint16{0x1302},
		extensions: [][]byte{
			selectedVersionExt(versionTLS13),
			alpnExt("h2"),
		},
	})

	fs, err := Parse(RoleServer, ModeStream, msg)
	assert.NoError(t, err)

	assert.Equal(t, RoleServer, fs.Role)
	assert.Equal(t, []uint16{0x1302}, fs.Ciphers)
	assert.Equal(t, []string{"h2"}, fs.ALPN)

	v, ok := fs.SelectedVersion.Get()
	assert.True(t, ok)
	assert.Equal(t, versionTLS13, v)
	assert.Equal(t, versionTLS13, fs.NegotiatedVersion())
}

func TestParseDTLSClientHello(t *testing.T) {
	msg := clientHello(helloSpec{
		legacyVersion: versionDTLS12,
		cookie:        []byte{0xde, 0xad, 0xbe, 0xef},
		ciphers:       []uint16{0xc02b, 0xc02f},
		extensions: [][]byte{
			offeredVersionsExt(versionDTLS13),
		},
	})

	fs, err := Parse(RoleClient, ModeDatagram, msg)
	assert.NoError(t, err)

	// The cookie must not bleed into the cipher list.
	assert.Equal(t, []uint16{0xc02b, 0xc02f}, fs.Ciphers)
	assert.Equal(t, versionDTLS12, fs.LegacyVersion)
	assert.Equal(t, versionDTLS13, fs.NegotiatedVersion())
}

func TestParseNoExtensions(t *testing.T) {
	msg := clientHello(helloSpec{
		legacyVersion: versionTLS10,
		ciphers:       []uint16{0x002f, 0x0035},
		noExtensions:  true,
	})

	fs, err := Parse(RoleClient, ModeStream, msg)
	assert.NoError(t, err)
	assert.Empty(t, fs.Extensions)
	assert.True(t, fs.SNI.IsNone())
	assert.Equal(t, versionTLS10, fs.NegotiatedVersion())
}

func TestParseTruncatedAtEveryOffset(t *testing.T) {
	msg := typicalClientHello()
	for i := 0; i < len(msg); i++ {
		_, err := Parse(RoleClient, ModeStream, msg[:i])
		if !errors.Is(err, ErrTruncatedMessage) {
			t.Fatalf("prefix of %d bytes: got %v, want ErrTruncatedMessage", i, err)
		}
	}
}

func TestParseNotAHello(t *testing.T) {
	// A certificate message tag.
	msg := handshake(0x0b, []byte{0x00, 0x00, 0x00})
	_, err := Parse(RoleClient, ModeStream, msg)
	assert.True(t, errors.Is(err, ErrNotAHello))

	// Role and tag must agree.
	_, err = Parse(RoleServer, ModeStream, typicalClientHello())
	assert.True(t, errors.Is(err, ErrNotAHello))
}

func TestParseDegradedLegacyVersion(t *testing.T) {
	msg := clientHello(helloSpec{
		legacyVersion: versionSSL2,
		ciphers:       []uint16{0x002f},
		noExtensions:  true,
	})

	fs, err := Parse(RoleClient, ModeStream, msg)
	assert.NoError(t, err)
	assert.True(t, fs.Degraded)
	assert.True(t, errors.Is(fs.Problem, ErrUnsupportedVersion))
	assert.Equal(t, versionSSL2, fs.LegacyVersion)
	assert.Empty(t, fs.Ciphers)
}

func TestParseOddCipherList(t *testing.T) {
	var body []byte
	body = append(body, u16list(versionTLS12)...)
	body = append(body, make([]byte, helloRandomLength)...)
	body = append(body, u8vec(nil)...)
	body = append(body, u16vec([]byte{0x13, 0x01, 0x13})...) // 3-byte cipher list
	body = append(body, u8vec([]byte{0x00})...)
	body = append(body, u16vec(nil)...)

	_, err := Parse(RoleClient, ModeStream, handshake(handshakeTypeClientHello, body))
	assert.True(t, errors.Is(err, ErrMalformedHandshake))
}

func TestParseCipherListOverrunsBody(t *testing.T) {
	var body []byte
	body = append(body, u16list(versionTLS12)...)
	body = append(body, make([]byte, helloRandomLength)...)
	body = append(body, u8vec(nil)...)
	body = append(body, 0xff, 0xff) // cipher list claims 65535 bytes
	body = append(body, 0x13, 0x01)

	_, err := Parse(RoleClient, ModeStream, handshake(handshakeTypeClientHello, body))
	assert.True(t, errors.Is(err, ErrMalformedLength))
}

func TestParseExtensionOverrunsBlock(t *testing.T) {
	bad := append(u16list(extSupportedGroups), 0xff, 0xff) // claims 65535-byte payload
	msg := clientHello(helloSpec{
		legacyVersion: versionTLS12,
		ciphers:       []uint16{0x1301},
		extensions:    [][]byte{bad},
	})

	_, err := Parse(RoleClient, ModeStream, msg)
	assert.True(t, errors.Is(err, ErrMalformedLength))
}

func TestParseDanglingExtensionHeader(t *testing.T) {
	msg := clientHello(helloSpec{
		legacyVersion: versionTLS12,
		ciphers:       []uint16{0x1301},
		extensions:    [][]byte{{0x00}}, // lone byte where a header should be
	})

	_, err := Parse(RoleClient, ModeStream, msg)
	assert.True(t, errors.Is(err, ErrMalformedHandshake))
}

func TestParseBadExtensionPayloadTolerated(t *testing.T) {
	// The signature algorithm list claims more entries than it holds. The
	// extension still counts; only the decoded field is lost.
	bad := ext(extSignatureAlgorithms, []byte{0x00, 0x10, 0x04})
	msg := clientHello(helloSpec{
		legacyVersion: versionTLS12,
		ciphers:       []uint16{0x1301},
		extensions:    [][]byte{bad, sniExt("example.com")},
	})

	fs, err := Parse(RoleClient, ModeStream, msg)
	assert.NoError(t, err)
	assert.Empty(t, fs.SignatureAlgorithms)
	assert.Equal(t, []uint16{extSignatureAlgorithms, extServerName}, fs.Extensions)
	assert.True(t, fs.HasSNI())
}

func TestParseTrailingPaddingIgnored(t *testing.T) {
	msg := append(typicalClientHello(), 0xca, 0xfe)
	fs, err := Parse(RoleClient, ModeStream, msg)
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x0a0a, 0x1301, 0x1302, 0x1303}, fs.Ciphers)
}

func TestParseDoesNotRetainBuffer(t *testing.T) {
	msg := clientHello(helloSpec{
		legacyVersion: versionTLS12,
		ciphers:       []uint16{0x1301},
		extensions:    [][]byte{sniExt("example.com")},
	})

	fs, err := Parse(RoleClient, ModeStream, msg)
	assert.NoError(t, err)

	for i := range msg {
		msg[i] = 0xff
	}
	name, _ := fs.SNI.Get()
	assert.Equal(t, "example.com", name)
}
