package extract

import (
	"context"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// Result holds the partial splits of one tree.
type Result struct {
	// Index is the 1-based position of the tree in its collection.
	Index int

	// Splits holds every partial split of the tree, trivial and degenerate
	// ones included. Edges inducing the same split share one entry whose
	// weight is the sum of the edge weights.
	Splits *splits.Pool

	// Support is the set of visible taxa the tree mentions.
	Support taxa.Set

	// AverageWeight is the mean edge weight of the tree, 0 without edges.
	AverageWeight float64
}

// Weight returns the tree's weight for ps, or 0 if the tree does not induce it.
func (r *Result) Weight(ps *splits.PartialSplit) float64 {
	if stored, ok := r.Splits.Get(ps); ok {
		return stored.Weight
	}
	return 0
}

// Extract walks t in post-order and returns its partial splits. index is
// reported in error messages.
//
// Node labels are looked up in tx. A leaf whose label is not a taxon fails
// with INVALID_TREE; labels on internal nodes that are not taxa (typically
// support values) are ignored. Hidden taxa are left out of every side.
func Extract(t *tree.Tree, index int, tx *taxa.Taxa) (*Result, error) {
	if t == nil || t.Root == nil {
		return nil, zerrors.New(zerrors.ErrCodeInvalidTree, "tree %d: no root", index)
	}

	below := make(map[*tree.Node]taxa.Set)
	var (
		sides []*splits.PartialSplit
		total float64
	)
	err := t.Walk(func(n, parent *tree.Node) error {
		var s taxa.Set
		for _, c := range n.Children {
			s.AddAll(below[c])
			delete(below, c)
		}
		if n.Label != "" {
			if i, ok := tx.Index(n.Label); ok {
				if !tx.IsHidden(i) {
					s.Add(i)
				}
			} else if n.IsLeaf() {
				return zerrors.New(zerrors.ErrCodeInvalidTree,
					"tree %d: edge %d: unknown taxon %q", index, len(sides)+1, n.Label)
			}
		} else if n.IsLeaf() && parent != nil {
			return zerrors.New(zerrors.ErrCodeInvalidTree,
				"tree %d: edge %d: unlabeled leaf", index, len(sides)+1)
		}
		below[n] = s

		if parent != nil {
			sides = append(sides, splits.OneSided(s, n.Weight()))
			total += n.Weight()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Index:   index,
		Splits:  splits.NewPool(),
		Support: below[t.Root],
	}
	if len(sides) > 0 {
		res.AverageWeight = total / float64(len(sides))
	}
	for _, side := range sides {
		ps := side.SetComplement(res.Support)
		if stored, ok := res.Splits.Get(ps); ok {
			stored.Weight += ps.Weight
			continue
		}
		res.Splits.Add(ps)
	}
	return res, nil
}

// ExtractAll extracts every tree in order. The context is checked between
// trees.
func ExtractAll(ctx context.Context, trees []*tree.Tree, tx *taxa.Taxa) ([]*Result, error) {
	out := make([]*Result, 0, len(trees))
	for i, t := range trees {
		if err := ctx.Err(); err != nil {
			return nil, zerrors.Cancelled(err, "extract")
		}
		res, err := Extract(t, i+1, tx)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// NonTrivial returns the union of the non-trivial splits of all results in
// tree order. The splits are copies, so the closure may not alias per-tree
// weights.
func NonTrivial(results []*Result) *splits.Pool {
	pool := splits.NewPool()
	for _, r := range results {
		for _, ps := range r.Splits.Splits() {
			if ps.NonTrivial() && !pool.Contains(ps) {
				pool.Add(ps.Clone())
			}
		}
	}
	return pool
}

// Union returns the union of all support sets.
func Union(results []*Result) taxa.Set {
	var s taxa.Set
	for _, r := range results {
		s.AddAll(r.Support)
	}
	return s
}
