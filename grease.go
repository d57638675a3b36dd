package ja4

import (
	"github.com/mel2oo/go-ja4/sets"
	"github.com/mel2oo/go-ja4/slices"
)

// The sixteen reserved GREASE values from RFC 8701. Peers insert them into
// cipher, extension, group and version lists to keep implementations honest
// about unknown code points; they carry no information about the sender and
// must never participate in fingerprinting.
var greaseValues = sets.NewSet[uint16](
	0x0a0a, 0x1a1a, 0x2a2a, 0x3a3a,
	0x4a4a, 0x5a5a, 0x6a6a, 0x7a7a,
	0x8a8a, 0x9a9a, 0xaaaa, 0xbaba,
	0xcaca, 0xdada, 0xeaea, 0xfafa,
)

// IsGrease reports whether code is a reserved GREASE value.
func IsGrease(code uint16) bool {
	return greaseValues.Contains(code)
}

// filterGrease removes GREASE values from a code list, preserving the order
// of the surviving codes. The input slice is never modified.
func filterGrease(codes []uint16) []uint16 {
	return slices.Filter(codes, func(c uint16) bool {
		return !IsGrease(c)
	})
}
