// Package bitset provides a fixed-capacity set of small integer identifiers.
package bitset

import "math/bits"

// Set is a fixed-capacity bitset. Operations on identifiers at or above
// the capacity are silent no-ops.
type Set struct {
	words    []uint64
	capacity int
}

// New creates a set that can hold identifiers in [0, capacity).
func New(capacity int) *Set {
	return &Set{
		words:    make([]uint64, (capacity+63)/64),
		capacity: capacity,
	}
}

// Add inserts x into the set.
func (s *Set) Add(x int) {
	if x < 0 || x >= s.capacity {
		return
	}
	s.words[x>>6] |= 1 << (uint(x) & 63)
}

// Remove deletes x from the set.
func (s *Set) Remove(x int) {
	if x < 0 || x >= s.capacity {
		return
	}
	s.words[x>>6] &^= 1 << (uint(x) & 63)
}

// Contains reports whether x is in the set.
func (s *Set) Contains(x int) bool {
	if x < 0 || x >= s.capacity {
		return false
	}
	return s.words[x>>6]&(1<<(uint(x)&63)) != 0
}

// Clear removes every identifier.
func (s *Set) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// Count returns the number of identifiers in the set.
func (s *Set) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Enumerate fills out with the set's identifiers in ascending order and
// returns how many were written. out must have room for every member.
func (s *Set) Enumerate(out []int32) int {
	n := 0
	for i, w := range s.words {
		base := int32(i << 6)
		for w != 0 {
			out[n] = base + int32(bits.TrailingZeros64(w))
			n++
			w &= w - 1
		}
	}
	return n
}
