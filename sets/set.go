package sets

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Set[T comparable] map[T]struct{}

func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Insert(vs...)
	return s
}

func (s Set[T]) IsEmpty() bool {
	return len(s) == 0
}

func (s Set[T]) Size() int {
	return len(s)
}

func (s Set[T]) Contains(v T) bool {
	_, exists := s[v]
	return exists
}

func (s Set[T]) Insert(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

func (s Set[T]) Delete(vs ...T) {
	for _, v := range vs {
		delete(s, v)
	}
}

func (s Set[T]) Clone() Set[T] {
	return maps.Clone(s)
}

// AsSlice returns the set's elements in a nondeterministic order.
func (s Set[T]) AsSlice() []T {
	return maps.Keys(s)
}

// AsSortedSlice returns the set's elements in ascending order.
func AsSortedSlice[T constraints.Ordered](s Set[T]) []T {
	elts := maps.Keys(s)
	slices.Sort(elts)
	return elts
}
