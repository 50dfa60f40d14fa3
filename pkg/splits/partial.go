package splits

import (
	"fmt"

	"github.com/matzehuels/zclosure/pkg/taxa"
)

// PartialSplit is a canonical bipartition (A, B) of the taxa A ∪ B.
//
// The sides are owned by the split: constructors clone their arguments and no
// method mutates a side after construction. Weight and Confidence default to 1.
type PartialSplit struct {
	a, b       taxa.Set
	Weight     float64
	Confidence float64
}

// New returns the canonical partial split with sides a and b. The sides are
// cloned. Callers must pass disjoint sets.
func New(a, b taxa.Set) *PartialSplit {
	a, b = a.Clone(), b.Clone()
	if before(b, a) {
		a, b = b, a
	}
	return &PartialSplit{a: a, b: b, Weight: 1, Confidence: 1}
}

// OneSided returns a split whose B side is still empty. Fill it with
// SetComplement once the support set is known.
func OneSided(a taxa.Set, weight float64) *PartialSplit {
	ps := New(a, taxa.Set{})
	ps.Weight = weight
	return ps
}

// before reports whether x sorts before y: smaller lowest member first, empty
// sides last.
func before(x, y taxa.Set) bool {
	mx, my := x.Min(), y.Min()
	switch {
	case mx == 0:
		return false
	case my == 0:
		return true
	default:
		return mx < my
	}
}

// A returns the first side.
func (ps *PartialSplit) A() taxa.Set { return ps.a }

// B returns the second side.
func (ps *PartialSplit) B() taxa.Set { return ps.b }

// Support returns A ∪ B.
func (ps *PartialSplit) Support() taxa.Set { return ps.a.Union(ps.b) }

// Size returns |A| + |B|.
func (ps *PartialSplit) Size() int { return ps.a.Len() + ps.b.Len() }

// NonTrivial reports whether both sides have more than one taxon.
func (ps *PartialSplit) NonTrivial() bool { return ps.a.Len() > 1 && ps.b.Len() > 1 }

// IsFull reports whether the split covers all n taxa.
func (ps *PartialSplit) IsFull(n int) bool { return ps.Size() == n }

// SetComplement returns a copy whose B side is support \ A, re-canonicalized.
// Weight and confidence carry over.
func (ps *PartialSplit) SetComplement(support taxa.Set) *PartialSplit {
	a := ps.a.Union(ps.b)
	out := New(a, support.Minus(a))
	out.Weight, out.Confidence = ps.Weight, ps.Confidence
	return out
}

// Induced projects the split onto support. It returns false if either side
// of the projection would be empty.
func (ps *PartialSplit) Induced(support taxa.Set) (*PartialSplit, bool) {
	a, b := ps.a.Intersect(support), ps.b.Intersect(support)
	if a.Empty() || b.Empty() {
		return nil, false
	}
	out := New(a, b)
	out.Weight, out.Confidence = ps.Weight, ps.Confidence
	return out, true
}

// Equal reports whether both splits have the same sides. Weights are ignored.
func (ps *PartialSplit) Equal(o *PartialSplit) bool {
	if ps == o {
		return true
	}
	if ps == nil || o == nil {
		return false
	}
	return ps.a.Equal(o.a) && ps.b.Equal(o.b)
}

// Hash returns a deterministic hash over both canonical sides. Equal splits
// hash equally.
func (ps *PartialSplit) Hash() uint64 { return taxa.HashPair(ps.a, ps.b) }

// Clone returns an independent copy.
func (ps *PartialSplit) Clone() *PartialSplit {
	return &PartialSplit{a: ps.a.Clone(), b: ps.b.Clone(), Weight: ps.Weight, Confidence: ps.Confidence}
}

// String formats the split as {1,2} | {3,4}.
func (ps *PartialSplit) String() string {
	return fmt.Sprintf("%s | %s", ps.a, ps.b)
}

// Format formats the split with taxon labels.
func (ps *PartialSplit) Format(tx *taxa.Taxa) string {
	return tx.Format(ps.a) + " | " + tx.Format(ps.b)
}
