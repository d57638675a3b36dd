// Package ja4 computes JA4-style network fingerprints from the metadata of
// TLS and DTLS hello messages. A fingerprint is a short stable string derived
// from the structural shape of a handshake (offered versions, cipher suites,
// extensions, ALPN) rather than from payload content, which makes passive
// client and server identification possible without decrypting anything.
//
// The package is a pure transformation: one handshake message in, one
// FieldSet and one Fingerprint out. It performs no I/O, retains no state and
// keeps no reference to the caller's buffer, so it is safe to call
// concurrently on distinct inputs. Capturing packets, reassembling streams
// and locating handshake bytes is the job of the capture package (or any
// other host integration).
package ja4

// Role identifies which side of the handshake sent the message.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	}
	return "unknown"
}

// TransportMode identifies the transport carrying the handshake. It only
// affects the first character of the fingerprint; the hello layout is given
// by the message itself.
type TransportMode int

const (
	// TLS over a stream transport (TCP).
	ModeStream TransportMode = iota
	// TLS over a datagram transport (DTLS, QUIC).
	ModeDatagram
)

func (m TransportMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeDatagram:
		return "datagram"
	}
	return "unknown"
}

// Compute parses a single handshake message and returns the extracted field
// set together with its fingerprint. It is shorthand for Parse followed by
// FieldSet.Fingerprint.
//
// A nil error with FieldSet.Degraded set means the message was recognized
// but could not be decoded in full; the fingerprint keeps its fixed shape
// but must not be used for exact-match lookups.
func Compute(role Role, mode TransportMode, msg []byte) (FieldSet, Fingerprint, error) {
	fields, err := Parse(role, mode, msg)
	if err != nil {
		return FieldSet{}, Fingerprint{}, err
	}
	return fields, fields.Fingerprint(), nil
}
