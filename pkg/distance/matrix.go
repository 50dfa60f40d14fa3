package distance

import (
	"context"

	"gonum.org/v1/gonum/mat"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// Matrix is a symmetric distance matrix over taxa 1..N.
type Matrix struct {
	N      int
	dist   *mat.SymDense
	counts *mat.SymDense
}

// NewMatrix returns a matrix over n taxa with every pair missing.
func NewMatrix(n int) *Matrix {
	size := max(n, 1)
	return &Matrix{N: n, dist: mat.NewSymDense(size, nil), counts: mat.NewSymDense(size, nil)}
}

// At returns the distance between taxa i and j (1-based) and whether any tree
// mentions both.
func (m *Matrix) At(i, j int) (float64, bool) {
	if i == j {
		return 0, true
	}
	if m.counts.At(i-1, j-1) == 0 {
		return 0, false
	}
	return m.dist.At(i-1, j-1), true
}

// Set stores the distance between taxa i and j.
func (m *Matrix) Set(i, j int, d float64) {
	m.dist.SetSym(i-1, j-1, d)
	m.counts.SetSym(i-1, j-1, 1)
}

// Count returns how many trees mention both i and j.
func (m *Matrix) Count(i, j int) int { return int(m.counts.At(i-1, j-1)) }

// Missing returns the pairs of taxa from among that no tree mentions together.
func (m *Matrix) Missing(among taxa.Set) [][2]int {
	var out [][2]int
	members := among.Members()
	for x, i := range members {
		for _, j := range members[x+1:] {
			if m.counts.At(i-1, j-1) == 0 {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// AllPairs reports whether every pair of taxa in among co-occurs in some tree.
func (m *Matrix) AllPairs(among taxa.Set) bool { return len(m.Missing(among)) == 0 }

// Average computes the averaged patristic distances of trees over the taxa
// of tx. Hidden taxa and labels that are not taxa are skipped.
func Average(ctx context.Context, trees []*tree.Tree, tx *taxa.Taxa) (*Matrix, error) {
	n := tx.Len()
	m := NewMatrix(n)
	sums := mat.NewSymDense(max(n, 1), nil)
	for _, t := range trees {
		if err := ctx.Err(); err != nil {
			return nil, zerrors.Cancelled(err, "distance")
		}
		accumulate(t, tx, sums, m.counts)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			if c := m.counts.At(i, j); c > 0 {
				m.dist.SetSym(i, j, sums.At(i, j)/c)
			}
		}
	}
	return m, nil
}

// leafDist is a taxon and its distance to the node being processed.
type leafDist struct {
	taxon int
	d     float64
}

// accumulate adds the pairwise path lengths of t to sums and bumps counts.
// A taxon seen twice in one tree keeps its first occurrence.
func accumulate(t *tree.Tree, tx *taxa.Taxa, sums, counts *mat.SymDense) {
	below := make(map[*tree.Node][]leafDist)
	pairs := make(map[[2]int]float64)
	seen := make(map[int]bool)

	add := func(x, y leafDist) {
		if x.taxon == y.taxon {
			return
		}
		key := [2]int{min(x.taxon, y.taxon), max(x.taxon, y.taxon)}
		if _, ok := pairs[key]; !ok {
			pairs[key] = x.d + y.d
		}
	}

	_ = t.Walk(func(n, _ *tree.Node) error {
		var here []leafDist
		if i, ok := tx.Index(n.Label); ok && n.Label != "" && !tx.IsHidden(i) && !seen[i] {
			seen[i] = true
			here = append(here, leafDist{taxon: i})
		}
		for _, c := range n.Children {
			var lifted []leafDist
			for _, ld := range below[c] {
				lifted = append(lifted, leafDist{taxon: ld.taxon, d: ld.d + c.Weight()})
			}
			delete(below, c)
			for _, x := range here {
				for _, y := range lifted {
					add(x, y)
				}
			}
			here = append(here, lifted...)
		}
		below[n] = here
		return nil
	})

	for key, d := range pairs {
		i, j := key[0]-1, key[1]-1
		sums.SetSym(i, j, sums.At(i, j)+d)
		counts.SetSym(i, j, counts.At(i, j)+1)
	}
}
