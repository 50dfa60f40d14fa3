package closure

import (
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// sides returns the sides of ps, swapped if flip is set.
func sides(ps *splits.PartialSplit, flip bool) (taxa.Set, taxa.Set) {
	if flip {
		return ps.B(), ps.A()
	}
	return ps.A(), ps.B()
}

// matches reports whether the oriented sides satisfy the rule's precondition.
func matches(a1, b1, a2, b2 taxa.Set) bool {
	return a1.Intersects(a2) && a2.Intersects(b1) && b1.Intersects(b2) && !a1.Intersects(b2)
}

// ApplyZigZag applies the zig-zag rule to ps1 and ps2. It returns the two
// rewritten splits and true, or false if no orientation matches or the
// rewrite would reproduce the input pair. The inputs are not modified.
func ApplyZigZag(ps1, ps2 *splits.PartialSplit) (*splits.PartialSplit, *splits.PartialSplit, bool) {
	for _, flip1 := range [2]bool{false, true} {
		a1, b1 := sides(ps1, flip1)
		for _, flip2 := range [2]bool{false, true} {
			a2, b2 := sides(ps2, flip2)
			if !matches(a1, b1, a2, b2) {
				continue
			}
			out1 := splits.New(a1, b1.Union(b2))
			out2 := splits.New(a1.Union(a2), b2)
			if (out1.Equal(ps1) && out2.Equal(ps2)) || (out1.Equal(ps2) && out2.Equal(ps1)) {
				continue
			}
			return out1, out2, true
		}
	}
	return nil, nil, false
}

// Orientations returns how many of the four orientations of (ps1, ps2)
// satisfy the rule's precondition, whether or not the rewrite changes
// anything.
func Orientations(ps1, ps2 *splits.PartialSplit) int {
	n := 0
	for _, flip1 := range [2]bool{false, true} {
		a1, b1 := sides(ps1, flip1)
		for _, flip2 := range [2]bool{false, true} {
			a2, b2 := sides(ps2, flip2)
			if matches(a1, b1, a2, b2) {
				n++
			}
		}
	}
	return n
}
