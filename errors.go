package ja4

import "github.com/pkg/errors"

// Parse failures are reported through these sentinels, wrapped with context.
// Test with errors.Is.
var (
	// The buffer ended before a declared field did. Always fatal to the
	// parse; re-parsing the same bytes cannot succeed.
	ErrTruncatedMessage = errors.New("handshake message truncated")

	// A nested length field claimed more bytes than its enclosing structure
	// holds. Fatal.
	ErrMalformedLength = errors.New("nested length exceeds enclosing bounds")

	// The leading tag does not identify a hello message of the declared
	// role. Fatal; the caller should not retry with the same bytes.
	ErrNotAHello = errors.New("not a hello message")

	// The negotiation version is recognized but not decodable in detail
	// (SSLv2-family hellos). Not fatal: Parse returns a partial FieldSet
	// with Degraded set and this error recorded in FieldSet.Problem.
	ErrUnsupportedVersion = errors.New("unsupported negotiation version")

	// A structurally required section (cipher list, extension block) could
	// not be decoded. Fatal.
	ErrMalformedHandshake = errors.New("malformed handshake structure")
)
