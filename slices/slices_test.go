package slices

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	testCases := []struct {
		name     string
		slice    []int
		expected []string
	}{
		{
			name:     "nil slice",
			slice:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			slice:    []int{},
			expected: []string{},
		},
		{
			name:     "values",
			slice:    []int{3, 1, 2},
			expected: []string{"3", "1", "2"},
		},
	}

	for _, tc := range testCases {
		got := Map(tc.slice, strconv.Itoa)
		assert.Equal(t, tc.expected, got, tc.name)
	}
}

func TestFilter(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }

	assert.Nil(t, Filter(nil, even))
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, even))
	assert.Equal(t, []int{}, Filter([]int{1, 3}, even))
}
