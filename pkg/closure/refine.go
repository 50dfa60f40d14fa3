package closure

import (
	"github.com/matzehuels/zclosure/pkg/splits"
)

const maxRefineRounds = 10

// Refine applies the refinement heuristic to a copy of pool: for splits a
// and b (b in either orientation) with
//
//	Aa ∩ Ab ≠ ∅,  Ba ∩ Ab = ∅,  Bb ∩ Aa = ∅,  Ba ∩ Bb ≠ ∅
//
// it adds (Aa ∪ Ab, Ba ∪ Bb). Rounds repeat until one adds nothing, at most
// ten times. Refine does not re-close the result; [Close] does when
// Options.Refine is set.
func Refine(pool *splits.Pool) *splits.Pool {
	out := splits.NewPool(pool.Splits()...)
	for range maxRefineRounds {
		if len(refineOnce(out, nil)) == 0 {
			break
		}
	}
	return out
}

// refineRound is one refinement round with a cancellation check per
// comparison.
func (r *runner) refineRound(pool *splits.Pool) ([]*splits.PartialSplit, error) {
	var err error
	added := refineOnce(pool, func() bool {
		err = r.compare()
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// refineOnce compares every pair of the pool as it was at the start of the
// round and adds the merged splits. A nil check always continues.
func refineOnce(pool *splits.Pool, check func() bool) []*splits.PartialSplit {
	items := pool.Splits()
	var added []*splits.PartialSplit
	for i, a := range items {
		for _, b := range items[i+1:] {
			if check != nil && !check() {
				return nil
			}
			for _, flip := range [2]bool{false, true} {
				ab, bb := sides(b, flip)
				if !a.A().Intersects(ab) || a.B().Intersects(ab) || bb.Intersects(a.A()) || !a.B().Intersects(bb) {
					continue
				}
				ps := splits.New(a.A().Union(ab), a.B().Union(bb))
				if pool.Add(ps) {
					added = append(added, ps)
				}
			}
		}
	}
	return added
}
