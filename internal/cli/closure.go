package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zclosure/pkg/closure"
	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	zio "github.com/matzehuels/zclosure/pkg/io"
	"github.com/matzehuels/zclosure/pkg/pipeline"
	"github.com/matzehuels/zclosure/pkg/synth"
)

// Output formats for split systems.
const (
	formatJSON  = "json"
	formatNexus = "nexus"
)

// pipelineFlags holds the pipeline options settable from the command line.
type pipelineFlags struct {
	runs         int
	seed         uint64
	refine       bool
	concurrency  int
	noZRule      bool
	superTree    bool
	leastSquares bool
	weighting    string
	taxaFile     string
	hide         []string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.runs, "runs", pipeline.DefaultRuns, "number of closure runs over shuffled input orders")
	fl.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random seed for run shuffling")
	fl.BoolVar(&f.refine, "refine", false,
		"merge split pairs with overlapping A sides and overlapping B sides (Aa∩Ab≠∅, Ba∩Bb≠∅), up to 10 rounds")
	fl.IntVar(&f.concurrency, "concurrency", 0, "closure runs in parallel (0: number of CPUs)")
	fl.BoolVar(&f.noZRule, "no-zrule", false, "skip the closure and synthesize from the input splits")
	fl.BoolVar(&f.superTree, "super-tree", false, "keep only splits consistent with every tree")
	fl.BoolVar(&f.leastSquares, "least-squares", false, "re-weight splits by least squares against tree distances")
	fl.StringVar(&f.weighting, "weighting", pipeline.DefaultWeighting.String(),
		"split weighting: "+strings.Join(synth.Weightings(), ", "))
	fl.StringVar(&f.taxaFile, "taxa", "", "file with the taxon order, one label per line")
	fl.StringSliceVar(&f.hide, "hide", nil, "taxa to leave out of the split system")
}

// resolve merges the flags the user set over base, typically the config
// file's pipeline section. Validation is left to the runner.
func (f *pipelineFlags) resolve(cmd *cobra.Command, base pipeline.Options) (pipeline.Options, error) {
	opts := base
	changed := cmd.Flags().Changed
	if changed("runs") {
		opts.Runs = f.runs
	}
	if changed("seed") {
		opts.Seed = pipeline.Seed(f.seed)
	}
	if changed("refine") {
		opts.Refine = f.refine
	}
	if changed("concurrency") {
		opts.Concurrency = f.concurrency
	}
	if changed("no-zrule") {
		opts.SkipZRule = f.noZRule
	}
	if changed("super-tree") {
		opts.SuperTree = f.superTree
	}
	if changed("least-squares") {
		opts.LeastSquares = f.leastSquares
	}
	if changed("weighting") {
		opts.Weighting = f.weighting
	}
	if changed("hide") {
		opts.Hide = f.hide
	}
	if f.taxaFile != "" {
		tx, err := zio.ImportTaxa(f.taxaFile)
		if err != nil {
			return opts, zerrors.Wrap(zerrors.ErrCodeInvalidInput, err, "taxa file")
		}
		opts.Taxa = tx.Labels()
	}
	return opts, nil
}

// closureFlags holds the flags of the closure command.
type closureFlags struct {
	pipeline pipelineFlags
	cache    cacheFlags
	output   string
	format   string
	refresh  bool
	tui      bool
	save     bool
}

// closureCommand creates the closure command.
func (c *CLI) closureCommand() *cobra.Command {
	var flags closureFlags

	cmd := &cobra.Command{
		Use:   "closure <trees.nwk|->",
		Short: "Build a split system from partial trees",
		Long: `Build a weighted split system from Newick trees that may each cover only
some of the taxa.

The trees' non-trivial partial splits are closed under the zig-zag rule and
the resulting full splits are weighted from the input trees. Results are
cached; use --refresh to recompute.`,
		Example: `  zclosure closure trees.nwk
  zclosure closure trees.nwk --runs 8 -o network.nex
  cat trees.nwk | zclosure closure - --least-squares --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClosure(cmd, args[0], flags)
		},
	}

	flags.pipeline.register(cmd)
	flags.cache.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: json, nexus (default: from extension, else json)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&flags.tui, "tui", false, "show an interactive progress view")
	cmd.Flags().BoolVar(&flags.save, "save", false, "store the run for later retrieval")

	return cmd
}

func (c *CLI) runClosure(cmd *cobra.Command, path string, flags closureFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := outputFormat(flags.format, flags.output)
	if err != nil {
		return err
	}
	opts, err := flags.pipeline.resolve(cmd, c.cfg().Pipeline)
	if err != nil {
		return err
	}
	opts.Refresh = flags.refresh
	opts.Logger = logger

	input, err := readInput(path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var res *pipeline.Result
	if flags.tui {
		res, err = runWithTUI(ctx, runner, input, opts)
	} else {
		res, err = runWithSpinner(ctx, runner, input, opts)
	}
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	if err := writeResult(res, format, flags.output); err != nil {
		return err
	}
	printStats(res.Stats, res.CacheHit)

	if flags.save {
		st, err := c.newStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		run, err := pipeline.SaveRun(ctx, st, sourceName(path), opts, res, c.cfg().Store.TTL.Duration)
		if err != nil {
			return err
		}
		logger.Debug("run saved", "id", run.ID)
		printSuccess("Saved run %s", StyleHighlight.Render(run.ID))
		printNextStep("Fetch it again", "zclosure runs get "+run.ID)
	}
	return nil
}

// runWithSpinner executes the pipeline behind a spinner that follows the
// closure rounds.
func runWithSpinner(ctx context.Context, runner *pipeline.Runner, input []byte, opts pipeline.Options) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, "Closing partial splits...")
	spinner.Start()

	user := opts.Observer
	opts.Observer = func(e closure.Event) {
		if !e.Done {
			spinner.SetMessage(fmt.Sprintf("Run %d, round %d: %d partial splits", e.Run+1, e.Round, e.Pool))
		}
		if user != nil {
			user(e)
		}
	}

	res, err := runner.Execute(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Closure failed")
		return nil, err
	}
	spinner.StopWithSuccess(fmt.Sprintf("%d splits over %d taxa", res.Stats.Splits, res.Stats.Taxa))
	return res, nil
}

// outputFormat picks the output format from the flag or the file extension.
func outputFormat(format, output string) (string, error) {
	switch format {
	case formatJSON, formatNexus:
		return format, nil
	case "":
	default:
		return "", zerrors.New(zerrors.ErrCodeInvalidOption, "unknown format %q (want json or nexus)", format)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".nex", ".nexus", ".nxs":
		return formatNexus, nil
	}
	return formatJSON, nil
}

// writeResult writes the split system of res to path, or stdout when path
// is empty.
func writeResult(res *pipeline.Result, format, path string) error {
	return writeOutput(path, func(w io.Writer) error {
		if format == formatNexus {
			return zio.WriteNexus(w, res.System, res.Taxa)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	})
}

// writeOutput runs write against the file at path, or stdout when path is
// empty, and reports the file written.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(path)
	return nil
}
