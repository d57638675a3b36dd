package ja4

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mel2oo/go-ja4/memview"
)

// parseClientBody decodes the client hello past the session id: the
// cipher-suite list, compression methods, and the extensions block.
func parseClientBody(r *memview.Reader, fs *FieldSet) error {
	// DTLS client hellos carry a cookie between the session id and the
	// cipher list.
	if isDTLSVersion(fs.LegacyVersion) {
		if err := r.SkipVector_byte(); err != nil {
			return errors.Wrap(ErrTruncatedMessage, "dtls cookie")
		}
	}

	_, ciphers, err := r.ReadUint16AndTruncate()
	if err != nil {
		return structural(err, "cipher suite list")
	}
	for {
		c, err := ciphers.ReadUint16()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(ErrMalformedHandshake, "odd-length cipher suite list")
		}
		fs.Ciphers = append(fs.Ciphers, c)
	}

	if err := r.SkipVector_byte(); err != nil {
		return structural(err, "compression methods")
	}

	return parseExtensions(r, fs)
}
