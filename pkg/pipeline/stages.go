package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/zclosure/pkg/closure"
	"github.com/matzehuels/zclosure/pkg/distance"
	"github.com/matzehuels/zclosure/pkg/extract"
	"github.com/matzehuels/zclosure/pkg/lsq"
	"github.com/matzehuels/zclosure/pkg/observability"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/synth"
	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// Extract collects the partial splits and support set of every tree.
func Extract(ctx context.Context, trees []*tree.Tree, tx *taxa.Taxa) ([]*extract.Result, error) {
	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, len(trees))
	start := time.Now()

	results, err := extract.ExtractAll(ctx, trees, tx)
	partials := 0
	for _, r := range results {
		partials += r.Splits.Len()
	}
	hooks.OnExtractComplete(ctx, partials, time.Since(start), err)
	return results, err
}

// Close runs the closure engine over the non-trivial partial splits of
// results. When the zig-zag rule is switched off the pool passes through
// unchanged.
func Close(ctx context.Context, results []*extract.Result, opts Options) (*closure.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	input := extract.NonTrivial(results)
	if !opts.UsesZRule() {
		return &closure.Result{
			Pool:  input,
			Stats: closure.Stats{Input: input.Len(), Output: input.Len()},
		}, nil
	}

	hooks := observability.Pipeline()
	hooks.OnClosureStart(ctx, input.Len(), opts.Runs)
	start := time.Now()

	copts := opts.ClosureOptions()
	copts.Observer = observe(ctx, opts.Observer)
	res, err := closure.Close(ctx, input, copts)

	output := 0
	if res != nil {
		output = res.Pool.Len()
	}
	hooks.OnClosureComplete(ctx, output, time.Since(start), err)
	return res, err
}

// observe forwards closure events to the registered closure hooks and then to
// next, if set.
func observe(ctx context.Context, next closure.Observer) closure.Observer {
	return func(e closure.Event) {
		if e.Done {
			observability.Closure().OnRunComplete(ctx, e.Run, e.Pool)
		} else {
			observability.Closure().OnRound(ctx, e.Run, e.Round, e.Pool, e.Rewritten)
		}
		if next != nil {
			next(e)
		}
	}
}

// Synthesize builds the split system from a closed pool.
func Synthesize(ctx context.Context, pool *splits.Pool, results []*extract.Result, tx *taxa.Taxa, opts Options) (*splits.System, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnSynthesizeStart(ctx, opts.Weighting)
	start := time.Now()

	sys, err := synth.Synthesize(ctx, synth.Input{
		Pool:   pool,
		Trees:  results,
		NTax:   tx.Len(),
		Hidden: tx.Hidden(),
	}, opts.SynthOptions())

	n := 0
	if sys != nil {
		n = sys.Len()
	}
	hooks.OnSynthesizeComplete(ctx, n, time.Since(start), err)
	return sys, err
}

// Fit re-weights sys by least squares against the averaged patristic
// distances of trees. When some pair of visible taxa never shares a tree the
// fit is skipped: Fit returns sys unchanged with a warning.
func Fit(ctx context.Context, fitter lsq.Fitter, sys *splits.System, trees []*tree.Tree, tx *taxa.Taxa) (*lsq.Fit, error) {
	if fitter == nil {
		fitter = lsq.Solver{}
	}
	hooks := observability.Pipeline()
	hooks.OnFitStart(ctx, sys.Len())
	start := time.Now()

	fit, err := fitSystem(ctx, fitter, sys, trees, tx)

	residual := 0.0
	if fit != nil {
		residual = fit.Residual
	}
	hooks.OnFitComplete(ctx, residual, time.Since(start), err)
	return fit, err
}

func fitSystem(ctx context.Context, fitter lsq.Fitter, sys *splits.System, trees []*tree.Tree, tx *taxa.Taxa) (*lsq.Fit, error) {
	d, err := distance.Average(ctx, trees, tx)
	if err != nil {
		return nil, err
	}
	if missing := d.Missing(sys.Taxa()); len(missing) > 0 {
		p := missing[0]
		return &lsq.Fit{
			System: sys,
			Warnings: []string{fmt.Sprintf(
				"least squares skipped: %d taxon pairs never share a tree (first: %s, %s)",
				len(missing), tx.Label(p[0]), tx.Label(p[1]))},
		}, nil
	}
	return fitter.Fit(ctx, sys, d)
}
