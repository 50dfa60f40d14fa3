// Package pipeline runs the complete split-system pipeline for zclosure.
//
// The CLI and the HTTP API both go through a [Runner], so defaults,
// caching and stage hooks behave the same at every entry point.
//
// # Stages
//
//  1. Parse: read Newick trees and build the taxon table
//  2. Extract: collect each tree's partial splits and support set
//  3. Closure: close the pool of non-trivial partial splits under the
//     zig-zag rule
//  4. Synthesize: keep the full splits, add trivial splits, assign weights
//  5. Fit: optionally re-weight by least squares against the averaged
//     patristic distance matrix
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, newick, pipeline.Options{Runs: 8})
//	if err != nil {
//	    return err
//	}
//	err = io.WriteNexus(os.Stdout, res.System, res.Taxa)
//
// Stages can also be run one at a time with [Parse], [Extract], [Close],
// [Synthesize] and [Fit] when a caller needs the intermediate results.
package pipeline

import (
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zclosure/pkg/cache"
	"github.com/matzehuels/zclosure/pkg/closure"
	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/synth"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultRuns is the number of closure runs.
	DefaultRuns = 1

	// DefaultSeed is the default random seed for run shuffling.
	DefaultSeed = uint64(42)

	// MaxRuns bounds the runs a single request may ask for.
	MaxRuns = 1000
)

// DefaultWeighting is the default split weighting policy.
var DefaultWeighting = synth.TreeSizeWeightedMean

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests and TOML for the
// CLI config file.
type Options struct {
	// Closure options
	SkipZRule   bool    `json:"skip_zrule,omitempty" toml:"skip_zrule"` // Skip the closure (default: false = apply the zig-zag rule)
	Runs        int     `json:"runs,omitempty" toml:"runs"`
	Seed        *uint64 `json:"seed,omitempty" toml:"seed,omitempty"` // nil means DefaultSeed; 0 is a valid seed
	Refine      bool    `json:"refine,omitempty" toml:"refine"`
	Concurrency int     `json:"concurrency,omitempty" toml:"concurrency"` // 0 means runtime.NumCPU()

	// Synthesis options
	SuperTree bool   `json:"super_tree,omitempty" toml:"super_tree"`
	Weighting string `json:"weighting,omitempty" toml:"weighting"`

	// LeastSquares re-weights the splits against averaged tree distances.
	LeastSquares bool `json:"least_squares,omitempty" toml:"least_squares"`

	// Taxon table options
	Taxa []string `json:"taxa,omitempty" toml:"taxa"` // Explicit taxon order; leaves outside it are an error
	Hide []string `json:"hide,omitempty" toml:"hide"`

	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger   *log.Logger      `json:"-" toml:"-"`
	Observer closure.Observer `json:"-" toml:"-"`

	// weighting is the parsed form of Weighting.
	weighting synth.Weighting

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// System is the synthesized split system.
	System *splits.System

	// Taxa is the taxon table the system is indexed by.
	Taxa *taxa.Taxa

	// Warnings lists recoverable problems, such as a skipped least-squares fit.
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the result came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Trees    int           `json:"trees"`
	Taxa     int           `json:"taxa"`
	Partials int           `json:"partials"` // non-trivial partial splits fed to the closure
	Splits   int           `json:"splits"`
	Closure  closure.Stats `json:"closure"`
	Residual float64       `json:"residual,omitempty"`

	ExtractTime    time.Duration `json:"extract_ns"`
	ClosureTime    time.Duration `json:"closure_ns"`
	SynthesizeTime time.Duration `json:"synthesize_ns"`
	FitTime        time.Duration `json:"fit_ns,omitempty"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Runs < 0 {
		return zerrors.New(zerrors.ErrCodeInvalidOption, "runs must be at least 1, got %d", o.Runs)
	}
	if o.Runs == 0 {
		o.Runs = DefaultRuns
	}
	if o.Runs > MaxRuns {
		return zerrors.New(zerrors.ErrCodeInvalidOption, "runs must be at most %d, got %d", MaxRuns, o.Runs)
	}
	if o.Concurrency < 0 {
		return zerrors.New(zerrors.ErrCodeInvalidOption, "concurrency must not be negative, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.Seed == nil {
		o.Seed = Seed(DefaultSeed)
	}

	o.weighting = DefaultWeighting
	if o.Weighting != "" {
		w, err := synth.ParseWeighting(o.Weighting)
		if err != nil {
			return err
		}
		o.weighting = w
	}
	o.Weighting = o.weighting.String()

	for _, label := range slices.Concat(o.Taxa, o.Hide) {
		if err := zerrors.ValidateTaxonLabel(label); err != nil {
			return err
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Seed returns a pointer to s for [Options.Seed].
func Seed(s uint64) *uint64 { return &s }

// seed returns the shuffle seed, DefaultSeed if none was set.
func (o *Options) seed() uint64 {
	if o.Seed == nil {
		return DefaultSeed
	}
	return *o.Seed
}

// UsesZRule returns whether the closure stage runs.
func (o *Options) UsesZRule() bool {
	return !o.SkipZRule
}

// ClosureOptions returns the closure engine configuration.
func (o *Options) ClosureOptions() closure.Options {
	return closure.Options{
		Runs:        o.Runs,
		Seed:        o.seed(),
		Refine:      o.Refine,
		Concurrency: o.Concurrency,
		Observer:    o.Observer,
	}
}

// SynthOptions returns the synthesizer configuration.
func (o *Options) SynthOptions() synth.Options {
	return synth.Options{SuperTree: o.SuperTree, Weighting: o.weighting}
}

// KeyOpts returns cache key options covering every field that changes the result.
func (o *Options) KeyOpts() cache.ClosureKeyOpts {
	return cache.ClosureKeyOpts{
		ZRule:        o.UsesZRule(),
		LeastSquares: o.LeastSquares,
		SuperTree:    o.SuperTree,
		Runs:         o.Runs,
		Seed:         o.seed(),
		Refine:       o.Refine,
		Weighting:    o.Weighting,
		Taxa:         o.Taxa,
		Hidden:       o.Hide,
	}
}
