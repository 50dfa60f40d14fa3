package synth

import (
	"context"
	"math"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/extract"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// Input is what [Synthesize] works on.
type Input struct {
	// Pool is the closed pool of partial splits.
	Pool *splits.Pool
	// Trees are the per-tree extraction results.
	Trees []*extract.Result
	// NTax is the size of the taxon table.
	NTax int
	// Hidden taxa are excluded from every split.
	Hidden taxa.Set
}

// Options configures [Synthesize].
type Options struct {
	// SuperTree rejects full splits whose projection onto some tree's support
	// set is not a split of that tree.
	SuperTree bool
	Weighting Weighting
}

// Synthesize builds the final split system. Without trees it returns an
// empty system. The context is checked once per split and tree comparison.
func Synthesize(ctx context.Context, in Input, opts Options) (*splits.System, error) {
	sys := splits.NewSystem(in.NTax)
	sys.Hidden = in.Hidden.Clone()
	if len(in.Trees) == 0 {
		return sys, nil
	}
	visible := sys.Taxa()
	n := visible.Len()

	for _, ps := range in.Pool.Splits() {
		if err := ctx.Err(); err != nil {
			return nil, zerrors.Cancelled(err, "synthesize")
		}
		if ps.Size() != n || ps.A().Empty() || ps.B().Empty() {
			continue
		}
		if opts.SuperTree {
			ok, err := consistent(ctx, ps, in.Trees)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		sys.Add(ps.A(), 1, 1)
	}

	if n > 1 {
		for t := range visible.All() {
			if !sys.Isolates(t) {
				sys.Add(taxa.NewSet(t), 1, 1)
			}
		}
	}

	if opts.Weighting == None {
		return sys, nil
	}
	for i := range sys.Splits {
		if err := ctx.Err(); err != nil {
			return nil, zerrors.Cancelled(err, "synthesize")
		}
		sys.Splits[i].Weight, sys.Splits[i].Confidence = weigh(sys.Partial(i), in.Trees, n, opts.Weighting)
	}
	return sys, nil
}

// consistent reports whether every two-sided projection of ps onto a tree's
// support set is one of that tree's splits.
func consistent(ctx context.Context, ps *splits.PartialSplit, trees []*extract.Result) (bool, error) {
	for _, t := range trees {
		if err := ctx.Err(); err != nil {
			return false, zerrors.Cancelled(err, "synthesize")
		}
		if proj, ok := ps.Induced(t.Support); ok && !t.Splits.Contains(proj) {
			return false, nil
		}
	}
	return true, nil
}

// weigh computes weight and confidence of a full split from the trees that
// see it. Trees that see the split without inducing it contribute 0.
func weigh(ps *splits.PartialSplit, trees []*extract.Result, n int, policy Weighting) (float64, float64) {
	var (
		projecting int
		supporting int
		sum        float64
		sizeSum    float64
		sizeWeight float64
		supportSum float64
		minimum    = math.Inf(1)
	)
	for _, t := range trees {
		proj, ok := ps.Induced(t.Support)
		if !ok {
			continue
		}
		projecting++
		w := t.Weight(proj)
		if t.Splits.Contains(proj) {
			supporting++
			supportSum += float64(t.Support.Len())
		}
		switch policy {
		case AverageRelative:
			if t.AverageWeight > 0 {
				sum += w / t.AverageWeight
			}
		case TreeSizeWeightedMean:
			size := float64(t.Support.Len())
			sizeWeight += size * w
			sizeSum += size
		default:
			sum += w
		}
		minimum = math.Min(minimum, w)
	}
	if projecting == 0 {
		return 0, 0
	}

	count := float64(supporting)
	switch policy {
	case AverageRelative, Mean:
		return sum / float64(projecting), count
	case TreeSizeWeightedMean:
		return sizeWeight / sizeSum, supportSum / float64(n)
	case Sum:
		return sum, count
	case Min:
		return minimum, count
	default:
		return 1, 1
	}
}
