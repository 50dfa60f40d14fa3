package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/zclosure/pkg/cache"
	"github.com/matzehuels/zclosure/pkg/closure"
	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/observability"
	"github.com/matzehuels/zclosure/pkg/store"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

const (
	sumTrees     = "(A,C,(B,D):2);\n(A,C,(B,D):3.5);\n"
	zigzagTrees  = "((t1,t2),(t3,t4));\n((t2,t3),(t4,t5));\n"
	lengthedTree = "((A:1,B:2):3,(C:4,D:5):0);"
)

func newTestRunner(t *testing.T) (*Runner, *cache.FileCache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil), c
}

func TestExecuteSumWeighting(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sumTrees), Options{
		Weighting: "Sum",
		Taxa:      []string{"A", "B", "C", "D"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	i := res.System.Index(taxa.NewSet(1, 3))
	if i < 0 {
		t.Fatalf("split {A,C}|{B,D} missing from %d splits", res.System.Len())
	}
	sp := res.System.Splits[i]
	if sp.Weight != 5.5 || sp.Confidence != 2 {
		t.Errorf("weight/confidence = %g/%g, want 5.5/2", sp.Weight, sp.Confidence)
	}
	if res.Stats.Trees != 2 || res.Stats.Taxa != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.CacheHit {
		t.Error("NullCache result should not be a cache hit")
	}
}

func TestExecuteZigZag(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	labels := []string{"t1", "t2", "t3", "t4", "t5"}

	tests := []struct {
		name   string
		skip   bool
		splits int
	}{
		{"closure", false, 7},
		{"no closure", true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(context.Background(), []byte(zigzagTrees), Options{
				Taxa:      labels,
				SkipZRule: tt.skip,
			})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if res.System.Len() != tt.splits {
				t.Errorf("splits = %d, want %d", res.System.Len(), tt.splits)
			}
			if !tt.skip && res.System.Index(taxa.NewSet(1, 2)) < 0 {
				t.Error("closure should add {t1,t2}|{t3,t4,t5}")
			}
		})
	}
}

func TestExecuteCache(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	input := []byte(sumTrees)

	first, err := r.Execute(ctx, input, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Fatal("first run should miss the cache")
	}

	second, err := r.Execute(ctx, input, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit the cache")
	}
	if second.System.Len() != first.System.Len() {
		t.Errorf("cached splits = %d, want %d", second.System.Len(), first.System.Len())
	}
	if second.Taxa.Len() != first.Taxa.Len() {
		t.Errorf("cached taxa = %d, want %d", second.Taxa.Len(), first.Taxa.Len())
	}

	refreshed, err := r.Execute(ctx, input, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	other, err := r.Execute(ctx, input, Options{Weighting: "Min"})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheHit {
		t.Error("different options should use a different key")
	}
}

func TestExecuteCancelled(t *testing.T) {
	r, c := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Execute(ctx, []byte(sumTrees), Options{})
	if !zerrors.IsCancelled(err) {
		t.Fatalf("Execute() error = %v, want cancellation", err)
	}
	if !zerrors.Is(err, zerrors.ErrCodeCancelled) {
		t.Errorf("Execute() error code = %q, want CANCELLED", zerrors.GetCode(err))
	}
	if res != nil {
		t.Error("cancelled run should return no result")
	}

	opts := Options{}
	_ = opts.ValidateAndSetDefaults()
	key := r.Keyer.ClosureKey([]byte(sumTrees), opts.KeyOpts())
	if _, hit, _ := c.Get(context.Background(), key); hit {
		t.Error("cancelled run must not be cached")
	}
}

func TestExecuteLeastSquares(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(lengthedTree), Options{LeastSquares: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	tests := []struct {
		side   []int
		weight float64
	}{
		{[]int{1, 2}, 3},
		{[]int{1}, 1},
		{[]int{2}, 2},
		{[]int{3}, 4},
		{[]int{4}, 5},
	}
	for _, tt := range tests {
		i := res.System.Index(taxa.NewSet(tt.side...))
		if i < 0 {
			t.Fatalf("split %v missing", tt.side)
		}
		if got := res.System.Splits[i].Weight; math.Abs(got-tt.weight) > 1e-9 {
			t.Errorf("split %v weight = %g, want %g", tt.side, got, tt.weight)
		}
	}
	if res.Stats.Residual > 1e-9 {
		t.Errorf("residual = %g, want 0", res.Stats.Residual)
	}
}

func TestExecuteLeastSquaresDowngrade(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	input := []byte("(A,B,(C,D):1);\n(A,B,(E,F):1);\n")
	res, err := r.Execute(context.Background(), input, Options{LeastSquares: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "least squares skipped") {
		t.Errorf("Warnings = %v, want a least-squares downgrade", res.Warnings)
	}
	if res.System.Len() == 0 {
		t.Error("downgraded run should still return the synthesized system")
	}
}

func TestExecuteNoTrees(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte("  \n"), Options{Taxa: []string{"A", "B", "C"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.System.NTax != 3 || res.System.Len() != 0 {
		t.Errorf("system = %d taxa, %d splits, want 3 taxa and no splits", res.System.NTax, res.System.Len())
	}
}

func TestExecuteUnknownTaxon(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), []byte("(A,B,(C,X));"), Options{Taxa: []string{"A", "B", "C"}})
	if !zerrors.Is(err, zerrors.ErrCodeInvalidTree) {
		t.Errorf("Execute() error = %v, want INVALID_TREE", err)
	}
}

func TestExecuteHide(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sumTrees), Options{Hide: []string{"D"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	d, _ := res.Taxa.Index("D")
	for i, sp := range res.System.Splits {
		if sp.Side.Has(d) || res.System.Other(i).Has(d) {
			t.Errorf("split %d contains hidden taxon D", i)
		}
	}

	if _, err := r.Execute(context.Background(), []byte(sumTrees), Options{Hide: []string{"Z"}}); err == nil {
		t.Error("hiding an unknown taxon should fail")
	}
}

func TestExecuteObserver(t *testing.T) {
	var done atomic.Int32
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), []byte(zigzagTrees), Options{
		Runs: 3,
		Observer: func(e closure.Event) {
			if e.Done {
				done.Add(1)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := done.Load(); got != 3 {
		t.Errorf("observer saw %d finished runs, want 3", got)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	stages []string
}

func (h *recordingHooks) OnExtractStart(context.Context, int) { h.stages = append(h.stages, "extract") }
func (h *recordingHooks) OnClosureStart(context.Context, int, int) {
	h.stages = append(h.stages, "closure")
}
func (h *recordingHooks) OnSynthesizeStart(context.Context, string) {
	h.stages = append(h.stages, "synthesize")
}
func (h *recordingHooks) OnFitComplete(context.Context, float64, time.Duration, error) {
	h.stages = append(h.stages, "fit")
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), []byte(lengthedTree), Options{LeastSquares: true}); err != nil {
		t.Fatal(err)
	}
	want := "extract,closure,synthesize,fit"
	if got := strings.Join(hooks.stages, ","); got != want {
		t.Errorf("stages = %s, want %s", got, want)
	}
}

func TestResultJSON(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sumTrees), Options{})
	if err != nil {
		t.Fatal(err)
	}
	res.Warnings = []string{"note"}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.System.Len() != res.System.Len() || back.Taxa.Len() != res.Taxa.Len() {
		t.Errorf("round trip lost splits or taxa")
	}
	if len(back.Warnings) != 1 || back.Stats.Trees != 2 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	opts := Options{Weighting: "Sum"}
	res, err := r.Execute(ctx, []byte(sumTrees), opts)
	if err != nil {
		t.Fatal(err)
	}

	run, err := SaveRun(ctx, st, "trees.nwk", opts, res, 0)
	if err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}
	if run.Splits != res.System.Len() || run.Trees != 2 {
		t.Errorf("run = %+v", run)
	}

	got, err := st.Get(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	back, err := LoadRun(got)
	if err != nil {
		t.Fatalf("LoadRun() error: %v", err)
	}
	if back.System.Len() != res.System.Len() {
		t.Errorf("loaded %d splits, want %d", back.System.Len(), res.System.Len())
	}
}
