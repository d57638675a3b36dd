package ja4

import (
	"encoding/hex"
	"strings"

	xslices "golang.org/x/exp/slices"

	"github.com/mel2oo/go-ja4/optionals"
	"github.com/mel2oo/go-ja4/sets"
	"github.com/mel2oo/go-ja4/slices"
)

// The fingerprint token table. Every constant the canonicalization rules
// depend on lives here so the rules stay auditable in one place.
const (
	segmentSep = "_"
	listSep    = ","

	// Counts in the prefix are two digits, capped rather than overflowed.
	maxCount = 99

	versionTokenUnknown = "00"
	alpnAbsentToken     = "00"

	modeStreamToken   = byte('t')
	modeDatagramToken = byte('q')

	sniPresentToken = byte('d')
	sniAbsentToken  = byte('i')
)

var versionTokens = map[uint16]string{
	versionSSL2:   "s2",
	versionSSL3:   "s3",
	versionTLS10:  "10",
	versionTLS11:  "11",
	versionTLS12:  "12",
	versionTLS13:  "13",
	versionDTLS10: "d1",
	versionDTLS12: "d2",
	versionDTLS13: "d3",
}

// Recency order of the known versions, for picking the best offered one.
// Numeric comparison is wrong for DTLS (see const.go).
var versionRanks = map[uint16]int{
	versionSSL2:   1,
	versionSSL3:   2,
	versionTLS10:  3,
	versionTLS11:  4,
	versionTLS12:  5,
	versionTLS13:  6,
	versionDTLS10: 3,
	versionDTLS12: 5,
	versionDTLS13: 6,
}

// Extension types tracked in the prefix segment but excluded from the
// extension hash, so that two near-universal extensions don't dominate it.
var hashExcludedExtensions = sets.NewSet(extServerName, extALPN)

func versionToken(v uint16) string {
	if tok, ok := versionTokens[v]; ok {
		return tok
	}
	return versionTokenUnknown
}

func versionRank(v uint16) int {
	return versionRanks[v]
}

func modeToken(m TransportMode) byte {
	if m == ModeDatagram {
		return modeDatagramToken
	}
	return modeStreamToken
}

// Policy selects canonicalization behavior that the governing specification
// leaves table-driven. The zero value matches the published rules.
type Policy struct {
	// The published rules do not strip GREASE values from signature
	// algorithm lists; set this if a deployed peer population is known to
	// emit placeholders there.
	FilterSignatureAlgorithms bool
}

var DefaultPolicy = Policy{}

// hexToken renders a 16-bit code as a lowercase 4-hex-digit token.
func hexToken(code uint16) string {
	return hex.EncodeToString([]byte{byte(code >> 8), byte(code)})
}

func joinHex(codes []uint16) string {
	return strings.Join(slices.Map(codes, hexToken), listSep)
}

// cipherCanonical renders GREASE-filtered cipher codes in their original
// offered order. Order is deliberately preserved: reordering ciphers must
// change the resulting hash.
func cipherCanonical(filtered []uint16) string {
	return joinHex(filtered)
}

// extensionCanonical renders GREASE-filtered extension type codes sorted
// ascending, excluding server_name and ALPN, then appends the signature
// algorithm list (unsorted, offered order) after a secondary separator when
// one was offered.
func extensionCanonical(filteredExts, sigAlgs []uint16) string {
	hashed := slices.Filter(filteredExts, func(c uint16) bool {
		return !hashExcludedExtensions.Contains(c)
	})
	sorted := make([]uint16, len(hashed))
	copy(sorted, hashed)
	xslices.Sort(sorted)

	s := joinHex(sorted)
	if len(sigAlgs) > 0 {
		s += segmentSep + joinHex(sigAlgs)
	}
	return s
}

// alpnToken derives the two prefix characters from the first ALPN value:
// its first and last character, or the absent token when no ALPN was
// offered. A value whose first or last byte is not ASCII alphanumeric is
// represented by the first hex digit of its first byte and the last hex
// digit of its last byte. A single-character value repeats that character.
func alpnToken(alpn optionals.Optional[string]) string {
	value, ok := alpn.Get()
	if !ok || value == "" {
		return alpnAbsentToken
	}

	first, last := value[0], value[len(value)-1]
	if isAlnum(first) && isAlnum(last) {
		return string([]byte{first, last})
	}
	firstHex := hex.EncodeToString([]byte{first})
	lastHex := hex.EncodeToString([]byte{last})
	return string([]byte{firstHex[0], lastHex[1]})
}

func isAlnum(b byte) bool {
	return ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
