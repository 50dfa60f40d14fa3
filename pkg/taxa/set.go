package taxa

import (
	"encoding/binary"
	"iter"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// emptyBits stands in for the bit vector of a zero Set. It is never mutated.
var emptyBits = bitset.New(0)

// Set is a set of taxa backed by a bit vector. The zero value is an empty set
// ready to use.
type Set struct {
	b *bitset.BitSet
}

// NewSet returns a set holding the given taxa. Indices below 1 panic.
func NewSet(members ...int) Set {
	var s Set
	for _, t := range members {
		s.Add(t)
	}
	return s
}

// Range returns the set {1, ..., n}.
func Range(n int) Set {
	s := Set{b: bitset.New(uint(n + 1))}
	for t := 1; t <= n; t++ {
		s.b.Set(uint(t))
	}
	return s
}

func (s Set) bits() *bitset.BitSet {
	if s.b == nil {
		return emptyBits
	}
	return s.b
}

// Add inserts taxon t. It panics if t < 1.
func (s *Set) Add(t int) {
	if t < 1 {
		panic("taxa: taxon index must be >= 1, got " + strconv.Itoa(t))
	}
	if s.b == nil {
		s.b = bitset.New(uint(t + 1))
	}
	s.b.Set(uint(t))
}

// AddAll inserts every member of o.
func (s *Set) AddAll(o Set) {
	if o.Empty() {
		return
	}
	if s.b == nil {
		s.b = o.b.Clone()
		return
	}
	s.b.InPlaceUnion(o.b)
}

// Has reports whether t is a member.
func (s Set) Has(t int) bool {
	return t > 0 && s.bits().Test(uint(t))
}

// Len returns the number of members.
func (s Set) Len() int { return int(s.bits().Count()) }

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return s.b == nil || s.b.None() }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	if s.b == nil {
		return Set{}
	}
	return Set{b: s.b.Clone()}
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set { return Set{b: s.bits().Union(o.bits())} }

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set { return Set{b: s.bits().Intersection(o.bits())} }

// Minus returns s \ o.
func (s Set) Minus(o Set) Set { return Set{b: s.bits().Difference(o.bits())} }

// Intersects reports whether s ∩ o is non-empty.
func (s Set) Intersects(o Set) bool {
	return s.bits().IntersectionCardinality(o.bits()) > 0
}

// SubsetOf reports whether every member of s is in o.
func (s Set) SubsetOf(o Set) bool {
	return s.bits().IntersectionCardinality(o.bits()) == s.bits().Count()
}

// Equal reports whether s and o have the same members, regardless of the
// capacity of the underlying bit vectors.
func (s Set) Equal(o Set) bool {
	n := s.bits().Count()
	return n == o.bits().Count() && s.bits().IntersectionCardinality(o.bits()) == n
}

// Complement returns {1..n} \ s.
func (s Set) Complement(n int) Set { return Range(n).Minus(s) }

// Min returns the lowest member, or 0 for an empty set.
func (s Set) Min() int {
	if i, ok := s.bits().NextSet(1); ok {
		return int(i)
	}
	return 0
}

// All iterates the members in ascending order.
func (s Set) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		b := s.bits()
		for i, ok := b.NextSet(1); ok; i, ok = b.NextSet(i + 1) {
			if !yield(int(i)) {
				return
			}
		}
	}
}

// Members returns the members in ascending order.
func (s Set) Members() []int {
	out := make([]int, 0, s.Len())
	for t := range s.All() {
		out = append(out, t)
	}
	return out
}

// Hash returns a deterministic 64-bit hash of the members. Equal sets hash
// equally even when their bit vectors differ in capacity.
func (s Set) Hash() uint64 {
	d := xxhash.New()
	s.writeHash(d)
	return d.Sum64()
}

func (s Set) writeHash(d *xxhash.Digest) {
	var buf [4]byte
	for t := range s.All() {
		binary.LittleEndian.PutUint32(buf[:], uint32(t))
		_, _ = d.Write(buf[:])
	}
}

// String formats the set as {1,3,4}.
func (s Set) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for t := range s.All() {
		if !first {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(t))
		first = false
	}
	sb.WriteByte('}')
	return sb.String()
}

// HashPair hashes an ordered pair of sets with a separator between them so
// ({1},{2,3}) and ({1,2},{3}) differ.
func HashPair(a, b Set) uint64 {
	d := xxhash.New()
	a.writeHash(d)
	_, _ = d.Write([]byte{0xff, 0xff, 0xff, 0xff})
	b.writeHash(d)
	return d.Sum64()
}
