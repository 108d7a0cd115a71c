// Package strset provides a small string set type used throughout the
// scheduler for iname and instruction-id bookkeeping. Iteration order over a
// Set is undefined; use Sorted when a deterministic order is required.
package strset

import "sort"

// Set is a set of strings.
type Set map[string]struct{}

// New creates a Set containing the given elements.
func New(elems ...string) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// FromSlice creates a Set from a slice.
func FromSlice(elems []string) Set {
	return New(elems...)
}

// Add inserts an element into the set.
func (s Set) Add(e string) {
	s[e] = struct{}{}
}

// AddAll inserts every element of the slice into the set.
func (s Set) AddAll(elems []string) {
	for _, e := range elems {
		s[e] = struct{}{}
	}
}

// Has reports whether e is in the set.
func (s Set) Has(e string) bool {
	_, ok := s[e]
	return ok
}

// Len returns the number of elements in the set.
func (s Set) Len() int {
	return len(s)
}

// Copy returns an independent copy of the set.
func (s Set) Copy() Set {
	out := make(Set, len(s))
	for e := range s {
		out[e] = struct{}{}
	}
	return out
}

// Clear removes all elements from the set.
func (s Set) Clear() {
	for e := range s {
		delete(s, e)
	}
}

// Union returns a new set containing the elements of s and t.
func (s Set) Union(t Set) Set {
	out := s.Copy()
	for e := range t {
		out[e] = struct{}{}
	}
	return out
}

// Minus returns a new set containing the elements of s not in t.
func (s Set) Minus(t Set) Set {
	out := make(Set)
	for e := range s {
		if !t.Has(e) {
			out[e] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set containing the elements common to s and t.
func (s Set) Intersect(t Set) Set {
	out := make(Set)
	for e := range s {
		if t.Has(e) {
			out[e] = struct{}{}
		}
	}
	return out
}

// SubsetOf reports whether every element of s is in t.
func (s Set) SubsetOf(t Set) bool {
	for e := range s {
		if !t.Has(e) {
			return false
		}
	}
	return true
}

// ProperSubsetOf reports whether s is a subset of t and t has at least one
// element not in s.
func (s Set) ProperSubsetOf(t Set) bool {
	return len(s) < len(t) && s.SubsetOf(t)
}

// Equal reports whether s and t contain exactly the same elements.
func (s Set) Equal(t Set) bool {
	return len(s) == len(t) && s.SubsetOf(t)
}

// Sorted returns the elements of the set in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
