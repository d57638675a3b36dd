package ja4

import (
	"github.com/mel2oo/go-ja4/memview"
)

// parseServerBody decodes the server hello past the session id: the single
// selected cipher suite, the compression method, and the extensions block.
func parseServerBody(r *memview.Reader, fs *FieldSet) error {
	cipher, err := r.ReadUint16()
	if err != nil {
		return structural(err, "selected cipher suite")
	}
	fs.Ciphers = []uint16{cipher}

	if err := r.Skip(1); err != nil {
		return structural(err, "compression method")
	}

	return parseExtensions(r, fs)
}
