package ja4

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sentinel hash segment for an empty canonical string.
const emptyHash = "000000000000"

// hash12 returns the first 12 hex characters of the SHA-256 digest of s, or
// the all-zero sentinel when s is empty. The inputs are not secret, so the
// only properties that matter are determinism and collision resistance.
func hash12(s string) string {
	if s == "" {
		return emptyHash
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
