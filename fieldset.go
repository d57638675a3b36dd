package ja4

import (
	"github.com/mel2oo/go-ja4/optionals"
)

// FieldSet is the ordered field set extracted from one hello message. It is
// a plain value: produced once by Parse, never mutated afterwards, and owned
// entirely by the caller.
//
// Lists are kept exactly as they appeared on the wire, GREASE values
// included. Filtering and reordering happen later, in the canonicalization
// step, so the FieldSet stays useful for diagnostics and display.
type FieldSet struct {
	Role Role
	Mode TransportMode

	// The version field of the hello itself.
	LegacyVersion uint16

	// Versions offered in the client's supported_versions extension, in
	// wire order.
	SupportedVersions []uint16

	// The version selected in the server's supported_versions extension.
	SelectedVersion optionals.Optional[uint16]

	// The DNS hostname from the server_name extension, if one was offered.
	SNI optionals.Optional[string]

	// Cipher suites: the offered list (client) or the single selected
	// suite (server), in wire order.
	Ciphers []uint16

	// Extension type codes in order of appearance.
	Extensions []uint16

	// Signature algorithms offered by a client, in wire order.
	SignatureAlgorithms []uint16

	// Supported groups (named curves) offered by a client, in wire order.
	SupportedGroups []uint16

	// ALPN protocol names: the offered list (client) or the single
	// selected protocol (server).
	ALPN []string

	// Degraded marks a field set that was recognized but not decoded in
	// full. A fingerprint built from it keeps the fixed shape but must not
	// be treated as authoritative for exact-match lookups. Problem records
	// the condition, e.g. ErrUnsupportedVersion.
	Degraded bool
	Problem  error
}

// NegotiatedVersion resolves the version the fingerprint reports: the
// server's selected version, or the most recent non-GREASE version the
// client offered, falling back to the hello's own version field.
func (fs FieldSet) NegotiatedVersion() uint16 {
	if v, ok := fs.SelectedVersion.Get(); ok {
		return v
	}

	best := fs.LegacyVersion
	bestRank := versionRank(best)
	for _, v := range fs.SupportedVersions {
		if IsGrease(v) {
			continue
		}
		if r := versionRank(v); r > bestRank {
			best, bestRank = v, r
		}
	}
	return best
}

// HasSNI reports whether a server name was offered.
func (fs FieldSet) HasSNI() bool {
	return fs.SNI.IsSome()
}

// FirstALPN returns the first offered (or the selected) ALPN protocol.
func (fs FieldSet) FirstALPN() optionals.Optional[string] {
	if len(fs.ALPN) == 0 {
		return optionals.None[string]()
	}
	return optionals.Some(fs.ALPN[0])
}

// Fingerprint is a fingerprint string tagged with the degraded status of the
// field set it was computed from.
type Fingerprint struct {
	Value    string
	Degraded bool
}

func (fp Fingerprint) String() string {
	return fp.Value
}
