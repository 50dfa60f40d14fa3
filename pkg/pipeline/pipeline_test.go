package pipeline

import (
	"runtime"
	"testing"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
)

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Runs != DefaultRuns {
		t.Errorf("Runs should be %d, got %d", DefaultRuns, opts.Runs)
	}
	if opts.Seed == nil || *opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %v", DefaultSeed, opts.Seed)
	}
	if opts.Concurrency != runtime.NumCPU() {
		t.Errorf("Concurrency should be %d, got %d", runtime.NumCPU(), opts.Concurrency)
	}
	if opts.Weighting != "TreeSizeWeightedMean" {
		t.Errorf("Weighting should be TreeSizeWeightedMean, got %q", opts.Weighting)
	}
	if !opts.UsesZRule() {
		t.Error("Default should apply the zig-zag rule")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code zerrors.Code
	}{
		{"negative runs", Options{Runs: -1}, zerrors.ErrCodeInvalidOption},
		{"too many runs", Options{Runs: MaxRuns + 1}, zerrors.ErrCodeInvalidOption},
		{"negative concurrency", Options{Concurrency: -2}, zerrors.ErrCodeInvalidOption},
		{"unknown weighting", Options{Weighting: "median"}, zerrors.ErrCodeInvalidOption},
		{"bad taxon label", Options{Taxa: []string{"a;b"}}, zerrors.ErrCodeInvalidInput},
		{"valid", Options{Runs: 4, Weighting: "sum", Concurrency: 2}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error = %v", err)
				}
				return
			}
			if !zerrors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsWeightingCanonical(t *testing.T) {
	opts := Options{Weighting: "treesizeweightedmean"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Weighting != "TreeSizeWeightedMean" {
		t.Errorf("Weighting = %q, want canonical name", opts.Weighting)
	}
	if got := opts.SynthOptions().Weighting.String(); got != "TreeSizeWeightedMean" {
		t.Errorf("SynthOptions().Weighting = %q", got)
	}
}

func TestOptionsUsesZRule(t *testing.T) {
	opts := Options{}
	if !opts.UsesZRule() {
		t.Error("Default should use the zig-zag rule")
	}

	opts.SkipZRule = true
	if opts.UsesZRule() {
		t.Error("SkipZRule=true should not use the zig-zag rule")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Weighting: "min"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts.KeyOpts()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	second := opts.KeyOpts()

	if first.Weighting != second.Weighting || first.Runs != second.Runs || first.Seed != second.Seed {
		t.Errorf("KeyOpts changed on second call: %+v vs %+v", first, second)
	}
}

func TestClosureOptions(t *testing.T) {
	opts := Options{Runs: 3, Seed: Seed(7), Refine: true, Concurrency: 2}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	c := opts.ClosureOptions()
	if c.Runs != 3 || c.Seed != 7 || !c.Refine || c.Concurrency != 2 {
		t.Errorf("ClosureOptions() = %+v", c)
	}
}

func TestOptionsSeedZero(t *testing.T) {
	opts := Options{Seed: Seed(0)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.ClosureOptions().Seed; got != 0 {
		t.Errorf("ClosureOptions().Seed = %d, want 0", got)
	}

	def := Options{}
	if err := def.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.KeyOpts().Seed == def.KeyOpts().Seed {
		t.Error("seed 0 and the default seed should have different cache keys")
	}
}

func TestKeyOpts(t *testing.T) {
	a := Options{}
	b := Options{SkipZRule: true}
	_ = a.ValidateAndSetDefaults()
	_ = b.ValidateAndSetDefaults()

	if !a.KeyOpts().ZRule || b.KeyOpts().ZRule {
		t.Error("KeyOpts().ZRule should mirror UsesZRule")
	}
}
