package types

import (
	"iter"
	"maps"
	"slices"
)

// Set is a generic hash set over comparable types, backed by a
// map[T]struct{}. It is mutable: Add and Delete modify it in place.
type Set[T comparable] map[T]struct{}

// NewSet creates a Set optionally seeded with the given elements.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	for _, d := range data {
		set[d] = struct{}{}
	}
	return set
}

// Add inserts one or more elements into the set.
func (s Set[T]) Add(values ...T) {
	for _, val := range values {
		s[val] = struct{}{}
	}
}

// Delete removes one or more elements from the set.
func (s Set[T]) Delete(values ...T) {
	for _, val := range values {
		delete(s, val)
	}
}

// Contains reports whether val is in the set.
func (s Set[T]) Contains(val T) bool {
	_, ok := s[val]
	return ok
}

// ToIter returns an iterator over all elements in the set.
func (s Set[T]) ToIter() iter.Seq[T] {
	return maps.Keys(s)
}

// ToSlice returns the elements as a slice, in no particular order.
func (s Set[T]) ToSlice() []T {
	return slices.Collect(s.ToIter())
}
