package ja4

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash12(t *testing.T) {
	// Known digest of a small extension list.
	assert.Equal(t, "aae71e8db6d7", hash12("551d0f,551d25,551d11"))

	// Empty input yields the sentinel, not the digest of "".
	assert.Equal(t, "000000000000", hash12(""))

	assert.Len(t, hash12("1301"), 12)
	assert.NotEqual(t, hash12("1301"), hash12("1302"))
}
