package closure

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
)

// Options configures [Close].
type Options struct {
	// Runs is the number of closure runs. Run 0 uses the input order, run i
	// shuffles with a PCG seeded from Seed+i. Values below 1 mean 1.
	Runs int

	// Seed is the base seed for the shuffles.
	Seed uint64

	// Refine enables the refinement heuristic after each run.
	Refine bool

	// Concurrency limits how many runs execute at once. Values below 1 mean 1.
	Concurrency int

	// Observer, if set, receives progress events. With Concurrency > 1 it is
	// called from several goroutines.
	Observer Observer
}

// Event reports closure progress.
type Event struct {
	Run       int // 0-based run index
	Round     int // round within the run
	Pool      int // distinct splits in the run's working array after the round
	Rewritten int // positions rewritten or added by the round
	Done      bool
}

// Observer receives closure progress events.
type Observer func(Event)

// Stats summarizes a call to [Close].
type Stats struct {
	Input       int   `json:"input"`
	Output      int   `json:"output"`
	Runs        int   `json:"runs"`
	Rounds      int   `json:"rounds"`
	Comparisons int64 `json:"comparisons"`
	Refined     int   `json:"refined"`
}

// Result is the closed pool and its statistics.
type Result struct {
	Pool  *splits.Pool
	Stats Stats
}

// Close computes the Z-closure of input as the union of the splits left by
// each run. The input pool is not modified.
//
// The context is checked once per pairwise comparison. On cancellation Close
// returns a CANCELLED error and no pool.
func Close(ctx context.Context, input *splits.Pool, opts Options) (*Result, error) {
	runs := max(opts.Runs, 1)
	pools := make([]*splits.Pool, runs)
	stats := make([]runStats, runs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i := range runs {
		g.Go(func() error {
			r := &runner{ctx: ctx, run: i, observer: opts.Observer}
			pool, err := r.closeRun(shuffled(input.Splits(), opts.Seed, i), opts.Refine)
			if err != nil {
				return err
			}
			pools[i], stats[i] = pool, r.stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Pool: splits.NewPool(), Stats: Stats{Input: input.Len(), Runs: runs}}
	for i, p := range pools {
		res.Pool.AddAll(p)
		res.Stats.Rounds += stats[i].rounds
		res.Stats.Comparisons += stats[i].comparisons
		res.Stats.Refined += stats[i].refined
	}
	res.Stats.Output = res.Pool.Len()
	return res, nil
}

// shuffled returns a copy of in, permuted for every run but the first.
func shuffled(in []*splits.PartialSplit, seed uint64, run int) []*splits.PartialSplit {
	if run == 0 {
		return in
	}
	s := seed + uint64(run)
	rng := rand.New(rand.NewPCG(s, s^0xdeadbeef))
	rng.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })
	return in
}

type runStats struct {
	rounds      int
	comparisons int64
	refined     int
}

// generation is one run's working array between rounds. Positions set in
// active were rewritten or added by the last round; every other pair of
// positions has been compared with its current splits and does not fire.
type generation struct {
	splits []*splits.PartialSplit
	active *bitset.BitSet
}

// newGeneration starts a run with every position active.
func newGeneration(input []*splits.PartialSplit) generation {
	gen := generation{active: bitset.New(0)}
	return gen.extend(input)
}

// extend appends the splits not already present and marks them active.
func (g generation) extend(more []*splits.PartialSplit) generation {
	seen := splits.NewPool(g.splits...)
	arr := slices.Clone(g.splits)
	active := g.active.Clone()
	for _, ps := range more {
		if seen.Add(ps) {
			active.Set(uint(len(arr)))
			arr = append(arr, ps)
		}
	}
	return generation{splits: arr, active: active}
}

// pool returns the run's splits in position order.
func (g generation) pool() *splits.Pool {
	return splits.NewPool(g.splits...)
}

type runner struct {
	ctx      context.Context
	run      int
	observer Observer
	stats    runStats
}

func (r *runner) emit(e Event) {
	if r.observer != nil {
		e.Run = r.run
		r.observer(e)
	}
}

func (r *runner) compare() error {
	r.stats.comparisons++
	if err := r.ctx.Err(); err != nil {
		return zerrors.Cancelled(err, "closure run %d", r.run)
	}
	return nil
}

// closeRun closes one ordering of the input and, if requested, alternates
// refinement rounds with further closure until refinement adds nothing.
func (r *runner) closeRun(input []*splits.PartialSplit, refine bool) (*splits.Pool, error) {
	gen, err := r.fixpoint(newGeneration(input))
	if err != nil {
		return nil, err
	}
	if refine {
		for range maxRefineRounds {
			added, err := r.refineRound(gen.pool())
			if err != nil {
				return nil, err
			}
			if len(added) == 0 {
				break
			}
			r.stats.refined += len(added)
			if gen, err = r.fixpoint(gen.extend(added)); err != nil {
				return nil, err
			}
		}
	}
	r.emit(Event{Round: r.stats.rounds, Pool: len(gen.splits), Done: true})
	return gen.pool(), nil
}

// fixpoint runs rounds until one rewrites nothing.
func (r *runner) fixpoint(gen generation) (generation, error) {
	for gen.active.Any() {
		next, err := r.round(gen)
		if err != nil {
			return generation{}, err
		}
		r.stats.rounds++
		r.emit(Event{Round: r.stats.rounds, Pool: len(next.splits), Rewritten: int(next.active.Count())})
		gen = next
	}
	return gen, nil
}

// round compares every pair of positions with at least one active side, in
// position order. A firing pair is overwritten in place by its rewrite, so
// later comparisons in the same round see the new splits. The round works on
// a copy of gen.splits and ends by dropping duplicates.
func (r *runner) round(gen generation) (generation, error) {
	arr := slices.Clone(gen.splits)
	fresh := bitset.New(uint(len(arr)))
	try := func(i, j int) error {
		if err := r.compare(); err != nil {
			return err
		}
		p, q, ok := ApplyZigZag(arr[i], arr[j])
		if !ok {
			return nil
		}
		arr[i], arr[j] = p, q
		fresh.Set(uint(i)).Set(uint(j))
		return nil
	}

	for i := range arr {
		if gen.active.Test(uint(i)) {
			for j := i + 1; j < len(arr); j++ {
				if err := try(i, j); err != nil {
					return generation{}, err
				}
			}
			continue
		}
		for j, ok := gen.active.NextSet(uint(i + 1)); ok; j, ok = gen.active.NextSet(j + 1) {
			if err := try(i, int(j)); err != nil {
				return generation{}, err
			}
		}
	}
	return dedupe(arr, fresh), nil
}

// dedupe keeps the first position of every split. A kept position is
// active if any of its copies was rewritten.
func dedupe(arr []*splits.PartialSplit, fresh *bitset.BitSet) generation {
	pool := splits.NewPool()
	active := bitset.New(uint(len(arr)))
	for i, ps := range arr {
		pool.Add(ps)
		if fresh.Test(uint(i)) {
			active.Set(uint(pool.Index(ps)))
		}
	}
	return generation{splits: pool.Splits(), active: active}
}
