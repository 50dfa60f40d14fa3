package closure

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

func ps(a, b []int) *splits.PartialSplit {
	return splits.New(taxa.NewSet(a...), taxa.NewSet(b...))
}

// randomSplits returns partial splits over n taxa where each taxon lands on
// side A, side B or neither.
func randomSplits(rng *rand.Rand, n, count int) []*splits.PartialSplit {
	var out []*splits.PartialSplit
	for len(out) < count {
		var a, b taxa.Set
		for t := 1; t <= n; t++ {
			switch rng.IntN(3) {
			case 0:
				a.Add(t)
			case 1:
				b.Add(t)
			}
		}
		if a.Len() > 1 && b.Len() > 1 {
			out = append(out, splits.New(a, b))
		}
	}
	return out
}

func TestApplyZigZag(t *testing.T) {
	tests := []struct {
		name       string
		ps1, ps2   *splits.PartialSplit
		want1      *splits.PartialSplit
		want2      *splits.PartialSplit
		shouldFire bool
	}{
		{
			name:       "overlapping chain",
			ps1:        ps([]int{1, 2}, []int{3, 4}),
			ps2:        ps([]int{2, 3}, []int{4, 5}),
			want1:      ps([]int{1, 2}, []int{3, 4, 5}),
			want2:      ps([]int{1, 2, 3}, []int{4, 5}),
			shouldFire: true,
		},
		{
			name:       "pair order does not matter",
			ps1:        ps([]int{2, 3}, []int{4, 5}),
			ps2:        ps([]int{1, 2}, []int{3, 4}),
			want1:      ps([]int{1, 2, 3}, []int{4, 5}),
			want2:      ps([]int{1, 2}, []int{3, 4, 5}),
			shouldFire: true,
		},
		{
			name: "disjoint singletons",
			ps1:  ps([]int{1}, []int{2}),
			ps2:  ps([]int{2}, []int{3, 4}),
		},
		{
			name: "nested sides",
			ps1:  ps([]int{2}, []int{3, 4}),
			ps2:  ps([]int{3}, []int{4}),
		},
		{
			name: "rewrite reproduces the pair",
			ps1:  ps([]int{1}, []int{2, 3, 4}),
			ps2:  ps([]int{1, 2}, []int{3, 4}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got1, got2, ok := ApplyZigZag(tt.ps1, tt.ps2)
			if ok != tt.shouldFire {
				t.Fatalf("ApplyZigZag fired = %v, want %v", ok, tt.shouldFire)
			}
			if !ok {
				return
			}
			same := got1.Equal(tt.want1) && got2.Equal(tt.want2)
			swapped := got1.Equal(tt.want2) && got2.Equal(tt.want1)
			if !same && !swapped {
				t.Errorf("got %s, %s; want %s, %s", got1, got2, tt.want1, tt.want2)
			}
		})
	}
}

func TestApplyZigZagDoesNotMutate(t *testing.T) {
	p, q := ps([]int{1, 2}, []int{3, 4}), ps([]int{2, 3}, []int{4, 5})
	if _, _, ok := ApplyZigZag(p, q); !ok {
		t.Fatal("rule should fire")
	}
	if !p.Equal(ps([]int{1, 2}, []int{3, 4})) || !q.Equal(ps([]int{2, 3}, []int{4, 5})) {
		t.Errorf("inputs changed: %s, %s", p, q)
	}
}

// At most one orientation can qualify: each one needs a different side
// intersection to be empty while the other three are not.
func TestOrientationsAtMostOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := randomSplits(rng, 9, 200)
	matched := 0
	for i, p := range pool {
		for _, q := range pool[i+1:] {
			n := Orientations(p, q)
			if n > 1 {
				t.Fatalf("%s and %s: %d orientations qualify", p, q, n)
			}
			if n != Orientations(q, p) {
				t.Fatalf("%s and %s: orientation count depends on pair order", p, q)
			}
			matched += n
		}
	}
	if matched == 0 {
		t.Fatal("random pool never matched; test is vacuous")
	}
}

func TestCloseFourTaxonExample(t *testing.T) {
	input := splits.NewPool(
		ps([]int{1}, []int{2}),
		ps([]int{2}, []int{3, 4}),
		ps([]int{3}, []int{4}),
	)
	res, err := Close(context.Background(), input, Options{Runs: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pool.Len() != 3 || !res.Pool.SubsetOf(input) {
		t.Errorf("pool changed: %v", res.Pool.Splits())
	}
}

func TestCloseProducesRewrites(t *testing.T) {
	input := splits.NewPool(
		ps([]int{1, 2}, []int{3, 4}),
		ps([]int{2, 3}, []int{4, 5}),
	)
	res, err := Close(context.Background(), input, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []*splits.PartialSplit{
		ps([]int{1, 2}, []int{3, 4, 5}),
		ps([]int{1, 2, 3}, []int{4, 5}),
	}
	if res.Pool.Len() != len(want) {
		t.Fatalf("pool = %v, want %v", res.Pool.Splits(), want)
	}
	for i, w := range want {
		if !res.Pool.At(i).Equal(w) {
			t.Errorf("position %d = %s, want %s", i, res.Pool.At(i), w)
		}
	}
	if res.Stats.Input != 2 || res.Stats.Output != 2 || res.Stats.Runs != 1 {
		t.Errorf("unexpected stats %+v", res.Stats)
	}
	if input.Len() != 2 || !input.Contains(ps([]int{1, 2}, []int{3, 4})) {
		t.Error("input pool was modified")
	}
}

// A rewritten split replaces its position and is compared again in the next
// round, so the chain keeps firing until no pair does.
func TestCloseRewritesChain(t *testing.T) {
	input := splits.NewPool(
		ps([]int{1, 2}, []int{3, 4}),
		ps([]int{2, 3}, []int{4, 5}),
		ps([]int{3, 4}, []int{5, 6}),
	)
	res, err := Close(context.Background(), input, Options{})
	if err != nil {
		t.Fatal(err)
	}
	items := res.Pool.Splits()
	for i, p := range items {
		for _, q := range items[i+1:] {
			if _, _, ok := ApplyZigZag(p, q); ok {
				t.Errorf("%s and %s still fire", p, q)
			}
		}
	}
	if res.Pool.Contains(ps([]int{1, 2}, []int{3, 4})) {
		t.Error("rewritten input split survived")
	}
	if fullSplits(res.Pool, 6).Len() == 0 {
		t.Errorf("no full split in %v", items)
	}
}

func TestCloseRunLeavesNoFiringPair(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 20 {
		input := splits.NewPool(randomSplits(rng, 7, 15)...)
		res, err := Close(context.Background(), input, Options{Runs: 1})
		if err != nil {
			t.Fatal(err)
		}
		items := res.Pool.Splits()
		for i, p := range items {
			for _, q := range items[i+1:] {
				if _, _, ok := ApplyZigZag(p, q); ok {
					t.Fatalf("pair %s, %s still fires", p, q)
				}
			}
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 5))
	input := splits.NewPool(randomSplits(rng, 7, 15)...)

	first, err := Close(context.Background(), input, Options{Runs: 1})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Close(context.Background(), first.Pool, Options{Runs: 3, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if second.Pool.Len() != first.Pool.Len() || !second.Pool.SubsetOf(first.Pool) {
		t.Errorf("second pass changed the pool from %d to %d splits", first.Pool.Len(), second.Pool.Len())
	}
}

func TestCloseMonotoneInRuns(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))
	input := splits.NewPool(randomSplits(rng, 7, 15)...)

	one, err := Close(context.Background(), input, Options{Runs: 1, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	many, err := Close(context.Background(), input, Options{Runs: 5, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if !one.Pool.SubsetOf(many.Pool) {
		t.Error("more runs lost splits")
	}
}

func fullSplits(p *splits.Pool, n int) *splits.Pool {
	out := splits.NewPool()
	for _, ps := range p.Splits() {
		if ps.IsFull(n) {
			out.Add(ps)
		}
	}
	return out
}

// Rewrites discard their inputs, so visiting pairs in another order can end
// in different splits. For at least one of these pools, shuffled runs must
// find a full split that the input order alone misses.
func TestCloseShuffledRunsRecoverFullSplits(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	for trial := range 50 {
		input := splits.NewPool(randomSplits(rng, 7, 8)...)
		one, err := Close(context.Background(), input, Options{Runs: 1})
		if err != nil {
			t.Fatal(err)
		}
		many, err := Close(context.Background(), input, Options{Runs: 16, Seed: uint64(trial + 1)})
		if err != nil {
			t.Fatal(err)
		}
		if !one.Pool.SubsetOf(many.Pool) {
			t.Fatalf("trial %d: 16 runs lost splits of run 0", trial)
		}
		if fullSplits(many.Pool, 7).Len() > fullSplits(one.Pool, 7).Len() {
			return
		}
	}
	t.Error("shuffled runs never found a full split beyond run 0")
}

func TestCloseConcurrentRunsAreDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 1))
	input := splits.NewPool(randomSplits(rng, 7, 15)...)

	seq, err := Close(context.Background(), input, Options{Runs: 4, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Close(context.Background(), input, Options{Runs: 4, Seed: 9, Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}
	if seq.Pool.Len() != par.Pool.Len() {
		t.Fatalf("sizes differ: %d vs %d", seq.Pool.Len(), par.Pool.Len())
	}
	for i := range seq.Pool.Len() {
		if !seq.Pool.At(i).Equal(par.Pool.At(i)) {
			t.Fatalf("order differs at %d", i)
		}
	}
}

func TestCloseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	input := splits.NewPool(ps([]int{1, 2}, []int{3, 4}), ps([]int{2, 3}, []int{4, 5}))

	res, err := Close(ctx, input, Options{Runs: 2})
	if !zerrors.IsCancelled(err) {
		t.Fatalf("err = %v, want cancellation", err)
	}
	if res != nil {
		t.Error("cancelled closure must not return a pool")
	}
}

func TestCloseObserver(t *testing.T) {
	var (
		mu     sync.Mutex
		events []Event
	)
	input := splits.NewPool(ps([]int{1, 2}, []int{3, 4}), ps([]int{2, 3}, []int{4, 5}))
	_, err := Close(context.Background(), input, Options{Runs: 2, Concurrency: 2, Observer: func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}})
	if err != nil {
		t.Fatal(err)
	}
	done := map[int]bool{}
	for _, e := range events {
		if e.Done {
			done[e.Run] = true
		}
	}
	if !done[0] || !done[1] {
		t.Errorf("missing done events: %+v", events)
	}
}

func TestRefine(t *testing.T) {
	a := ps([]int{1, 2}, []int{5, 6})
	b := ps([]int{2, 3}, []int{6, 7})
	want := ps([]int{1, 2, 3}, []int{5, 6, 7})

	if _, _, ok := ApplyZigZag(a, b); ok {
		t.Fatal("zig-zag should not fire on this pair")
	}
	input := splits.NewPool(a, b)
	if got := Refine(input); !got.Contains(want) {
		t.Errorf("Refine missed %s", want)
	}
	if input.Len() != 2 {
		t.Error("Refine modified its input")
	}

	res, err := Close(context.Background(), input, Options{Refine: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Pool.Contains(want) || res.Stats.Refined == 0 {
		t.Errorf("refined closure missing %s (stats %+v)", want, res.Stats)
	}
}
