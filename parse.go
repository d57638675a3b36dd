package ja4

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mel2oo/go-ja4/memview"
	"github.com/mel2oo/go-ja4/optionals"
)

// Parse extracts a FieldSet from a buffer holding exactly one handshake
// message of the declared role: the handshake header (type tag and 24-bit
// length), then the hello body. Record-layer framing must already be
// stripped; that is the capturing collaborator's job.
//
// Fatal failures (ErrTruncatedMessage, ErrMalformedLength, ErrNotAHello,
// ErrMalformedHandshake) return a zero FieldSet and the error. A hello of a
// recognized but undecodable version family returns a partial FieldSet with
// Degraded set, Problem recording ErrUnsupportedVersion, and a nil error.
//
// The buffer is not retained; the returned FieldSet is an independent value.
func Parse(role Role, mode TransportMode, msg []byte) (FieldSet, error) {
	r := memview.New(msg).CreateReader()

	tag, err := r.ReadByte()
	if err != nil {
		return FieldSet{}, errors.Wrap(ErrTruncatedMessage, "handshake type")
	}
	want := byte(handshakeTypeClientHello)
	if role == RoleServer {
		want = handshakeTypeServerHello
	}
	if tag != want {
		return FieldSet{}, errors.Wrapf(ErrNotAHello, "leading tag 0x%02x for %s", tag, role)
	}

	bodyLen, err := r.ReadUint24()
	if err != nil {
		return FieldSet{}, errors.Wrap(ErrTruncatedMessage, "handshake length")
	}
	if int64(bodyLen) > r.Remaining() {
		return FieldSet{}, errors.Wrapf(ErrTruncatedMessage,
			"declared body of %d bytes, have %d", bodyLen, r.Remaining())
	}
	// Bytes past the declared body length are padding; ignore them.
	body, err := r.Truncate(int64(bodyLen))
	if err != nil {
		return FieldSet{}, errors.Wrap(ErrMalformedLength, "handshake body")
	}

	fs := FieldSet{Role: role, Mode: mode}

	fs.LegacyVersion, err = body.ReadUint16()
	if err != nil {
		return FieldSet{}, errors.Wrap(ErrTruncatedMessage, "legacy version")
	}

	// SSLv2-family hellos use an entirely different layout. The version is
	// recognized, so report what we have instead of failing the parse.
	if fs.LegacyVersion == versionSSL2 {
		fs.Degraded = true
		fs.Problem = ErrUnsupportedVersion
		return fs, nil
	}

	if err := body.Skip(helloRandomLength); err != nil {
		return FieldSet{}, errors.Wrap(ErrTruncatedMessage, "random")
	}
	if err := body.SkipVector_byte(); err != nil {
		return FieldSet{}, errors.Wrap(ErrTruncatedMessage, "session id")
	}

	switch role {
	case RoleClient:
		err = parseClientBody(body, &fs)
	case RoleServer:
		err = parseServerBody(body, &fs)
	default:
		err = errors.Errorf("unknown role %d", role)
	}
	if err != nil {
		return FieldSet{}, err
	}
	return fs, nil
}

// structural maps a cursor failure in a structurally required section to the
// corresponding parse error.
func structural(err error, what string) error {
	switch {
	case errors.Is(err, memview.ErrBadLength):
		return errors.Wrap(ErrMalformedLength, what)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return errors.Wrap(ErrTruncatedMessage, what)
	}
	return errors.Wrap(err, what)
}

// parseExtensions walks the optional extensions block: a u16 block length,
// then (type, u16 length, payload) triples until the block is exhausted.
// Bytes after the declared block length are ignored; some implementations
// pad there. Payload decode failures leave the affected field absent, but
// the extension still counts and keeps its place in the ordering list.
func parseExtensions(r *memview.Reader, fs *FieldSet) error {
	if r.Remaining() == 0 {
		// Pre-TLS1.2 hellos may end here.
		return nil
	}

	_, block, err := r.ReadUint16AndTruncate()
	if err != nil {
		if errors.Is(err, memview.ErrBadLength) {
			return errors.Wrap(ErrMalformedLength, "extension block")
		}
		return errors.Wrap(ErrMalformedHandshake, "extension block length")
	}

	for {
		extType, err := block.ReadUint16()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(ErrMalformedHandshake, "dangling extension header")
		}

		_, payload, err := block.ReadUint16AndTruncate()
		if err != nil {
			if errors.Is(err, memview.ErrBadLength) {
				return errors.Wrapf(ErrMalformedLength, "extension 0x%04x", extType)
			}
			return errors.Wrapf(ErrMalformedHandshake, "extension 0x%04x header", extType)
		}

		fs.Extensions = append(fs.Extensions, extType)

		switch extType {
		case extServerName:
			if name, err := parseServerName(payload); err == nil {
				fs.SNI = optionals.Some(name)
			}

		case extALPN:
			if protos, err := parseALPN(payload); err == nil {
				fs.ALPN = protos
			}

		case extSignatureAlgorithms:
			if fs.Role == RoleClient {
				if algs, err := parseUint16Vector(payload); err == nil {
					fs.SignatureAlgorithms = algs
				}
			}

		case extSupportedGroups:
			if groups, err := parseUint16Vector(payload); err == nil {
				fs.SupportedGroups = groups
			}

		case extSupportedVersions:
			if fs.Role == RoleClient {
				if vs, err := parseOfferedVersions(payload); err == nil {
					fs.SupportedVersions = vs
				}
			} else if v, err := payload.ReadUint16(); err == nil {
				fs.SelectedVersion = optionals.Some(v)
			}
		}
	}
	return nil
}

// server_name extension: u16 list length, then entries of name type (u8) and
// u16-prefixed name. Only DNS hostname entries (type 0) are defined.
func parseServerName(r *memview.Reader) (string, error) {
	_, list, err := r.ReadUint16AndTruncate()
	if err != nil {
		return "", err
	}
	for {
		entryType, err := list.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		name, err := list.ReadString_uint16()
		if err != nil {
			return "", err
		}
		if entryType == 0x00 {
			return name, nil
		}
	}
	return "", errors.New("no dns hostname in server_name extension")
}

// ALPN extension: u16 list length, then byte-length-prefixed protocol names.
func parseALPN(r *memview.Reader) ([]string, error) {
	_, list, err := r.ReadUint16AndTruncate()
	if err != nil {
		return nil, err
	}
	protos := []string{}
	for {
		p, err := list.ReadString_byte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		protos = append(protos, p)
	}
	return protos, nil
}

// A u16-length-prefixed list of 16-bit codes, as used by the signature
// algorithm and supported group extensions.
func parseUint16Vector(r *memview.Reader) ([]uint16, error) {
	length, list, err := r.ReadUint16AndTruncate()
	if err != nil {
		return nil, err
	}
	codes := make([]uint16, 0, length/2)
	for {
		c, err := list.ReadUint16()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// The client supported_versions extension: a byte-length-prefixed list of
// 16-bit version codes.
func parseOfferedVersions(r *memview.Reader) ([]uint16, error) {
	length, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	vs := make([]uint16, 0, length/2)
	for i := 0; i+1 < int(length); i += 2 {
		v, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}
