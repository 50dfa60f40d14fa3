package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zclosure/pkg/cache"
	"github.com/matzehuels/zclosure/pkg/lsq"
	"github.com/matzehuels/zclosure/pkg/observability"
	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// cacheKeyType names closure results in cache hooks.
const cacheKeyType = "closure"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its cache, fitter and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Fitter lsq.Fitter
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Fitter: lsq.Solver{},
		Logger: logger,
	}
}

// Execute runs the complete pipeline on Newick input with caching.
//
// Results are cached under a key covering the input and every option that
// changes the output. Failed or cancelled runs are never cached.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key := r.Keyer.ClosureKey(input, opts.KeyOpts())
	if !opts.Refresh {
		if res, ok := r.cached(ctx, key); ok {
			opts.Logger.Debug("closure cache hit", "key", key)
			return res, nil
		}
	}

	trees, tx, err := Parse(input, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	res, err := r.Run(ctx, trees, tx, opts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return res, nil
}

func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		// Unreadable entries are recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	res.CacheHit = true
	return &res, true
}

// Run executes extract → closure → synthesize → fit on parsed trees,
// without caching.
func (r *Runner) Run(ctx context.Context, trees []*tree.Tree, tx *taxa.Taxa, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	res := &Result{Taxa: tx}
	res.Stats.Trees = len(trees)
	res.Stats.Taxa = tx.Len()
	if len(trees) == 0 {
		logger.Warn("no trees in input")
	}

	// Stage 1: Extract
	start := time.Now()
	results, err := Extract(ctx, trees, tx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	res.Stats.ExtractTime = time.Since(start)
	logger.Info("extracted partial splits",
		"trees", len(trees),
		"taxa", tx.Visible().Len(),
		"duration", res.Stats.ExtractTime)

	// Stage 2: Closure
	start = time.Now()
	closed, err := Close(ctx, results, opts)
	if err != nil {
		return nil, fmt.Errorf("closure: %w", err)
	}
	res.Stats.Partials = closed.Stats.Input
	res.Stats.Closure = closed.Stats
	res.Stats.ClosureTime = time.Since(start)
	if opts.UsesZRule() {
		logger.Info("closed partial splits",
			"input", closed.Stats.Input,
			"output", closed.Stats.Output,
			"runs", closed.Stats.Runs,
			"rounds", closed.Stats.Rounds,
			"duration", res.Stats.ClosureTime)
	} else {
		logger.Debug("zig-zag rule disabled", "partials", closed.Stats.Input)
	}

	// Stage 3: Synthesize
	start = time.Now()
	sys, err := Synthesize(ctx, closed.Pool, results, tx, opts)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	res.Stats.SynthesizeTime = time.Since(start)
	logger.Info("synthesized split system",
		"splits", sys.Len(),
		"weighting", opts.Weighting,
		"duration", res.Stats.SynthesizeTime)

	// Stage 4: Fit
	if opts.LeastSquares && sys.Len() > 0 {
		start = time.Now()
		fit, err := Fit(ctx, r.Fitter, sys, trees, tx)
		if err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
		sys = fit.System
		res.Warnings = append(res.Warnings, fit.Warnings...)
		res.Stats.Residual = fit.Residual
		res.Stats.FitTime = time.Since(start)
		logger.Info("fitted split weights",
			"residual", fit.Residual,
			"duration", res.Stats.FitTime)
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}

	res.System = sys
	res.Stats.Splits = sys.Len()
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
