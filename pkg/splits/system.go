package splits

import (
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// Split is one full split of a [System]. Only the side holding the lowest
// taxon is stored; the other side is every visible taxon not in Side.
type Split struct {
	Side       taxa.Set
	Weight     float64
	Confidence float64
	Label      string
}

// System is an ordered collection of full splits over taxa 1..NTax. Hidden
// taxa belong to neither side of any split.
type System struct {
	NTax   int
	Hidden taxa.Set
	Splits []Split
}

// NewSystem returns an empty system over n taxa.
func NewSystem(n int) *System {
	return &System{NTax: n}
}

// Taxa returns the visible taxa.
func (s *System) Taxa() taxa.Set { return taxa.Range(s.NTax).Minus(s.Hidden) }

// Len returns the number of splits.
func (s *System) Len() int { return len(s.Splits) }

// Add appends the split side | complement with the given weight and
// confidence. The side is normalized to contain the lowest taxon.
func (s *System) Add(side taxa.Set, weight, confidence float64) {
	other := s.Taxa().Minus(side)
	if before(other, side) {
		side = other
	}
	s.Splits = append(s.Splits, Split{Side: side.Clone(), Weight: weight, Confidence: confidence})
}

// Other returns the complement side of split i.
func (s *System) Other(i int) taxa.Set { return s.Taxa().Minus(s.Splits[i].Side) }

// Partial returns split i as a PartialSplit over the visible taxa.
func (s *System) Partial(i int) *PartialSplit {
	ps := New(s.Splits[i].Side, s.Other(i))
	ps.Weight, ps.Confidence = s.Splits[i].Weight, s.Splits[i].Confidence
	return ps
}

// Index returns the position of the split with the given side (either side
// may be passed), or -1.
func (s *System) Index(side taxa.Set) int {
	other := s.Taxa().Minus(side)
	for i, sp := range s.Splits {
		if sp.Side.Equal(side) || sp.Side.Equal(other) {
			return i
		}
	}
	return -1
}

// Isolates reports whether some split separates taxon t from all others.
func (s *System) Isolates(t int) bool {
	return s.Index(taxa.NewSet(t)) >= 0
}

// Separates reports whether split i puts x and y on different sides.
func (s *System) Separates(i, x, y int) bool {
	side := s.Splits[i].Side
	return side.Has(x) != side.Has(y)
}

// Compatible reports whether splits i and j are compatible, i.e. one of the
// four side intersections is empty.
func (s *System) Compatible(i, j int) bool {
	a1, b1 := s.Splits[i].Side, s.Other(i)
	a2, b2 := s.Splits[j].Side, s.Other(j)
	return !a1.Intersects(a2) || !a1.Intersects(b2) || !b1.Intersects(a2) || !b1.Intersects(b2)
}
