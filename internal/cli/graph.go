package cli

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	zio "github.com/matzehuels/zclosure/pkg/io"
	"github.com/matzehuels/zclosure/pkg/render/nodelink"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type graphFlags struct {
	pipeline pipelineFlags
	cache    cacheFlags
	output   string
	format   string
	detailed bool
	trivial  bool
}

// graphCommand creates the graph command, which draws the incompatibility
// graph of a split system.
func (c *CLI) graphCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "graph <trees.nwk|system.json>",
		Short: "Draw the incompatibility graph of a split system",
		Long: `Draw a split system as a graph with one node per split and an edge between
every pair of incompatible splits.

The input is either Newick trees, which are run through the closure first,
or a split system saved by "zclosure closure -f json".`,
		Example: `  zclosure graph trees.nwk -o splits.svg
  zclosure graph system.json --detailed -f dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], flags)
		},
	}

	flags.pipeline.register(cmd)
	flags.cache.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: dot, svg (default: from extension, else dot)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show weights and confidences")
	cmd.Flags().BoolVar(&flags.trivial, "trivial", false, "include trivial splits")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, path string, flags graphFlags) error {
	ctx := cmd.Context()

	format, err := graphFormat(flags.format, flags.output)
	if err != nil {
		return err
	}
	input, err := readInput(path)
	if err != nil {
		return err
	}

	var (
		sys *splits.System
		tx  *taxa.Taxa
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		sys, tx, err = zio.ReadSystem(bytes.NewReader(input))
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	} else {
		opts, err := flags.pipeline.resolve(cmd, c.cfg().Pipeline)
		if err != nil {
			return err
		}
		opts.Logger = loggerFromContext(ctx)
		runner, err := c.newRunner(ctx, flags.cache)
		if err != nil {
			return err
		}
		defer runner.Close()
		res, err := runWithSpinner(ctx, runner, input, opts)
		if err != nil {
			return err
		}
		sys, tx = res.System, res.Taxa
	}

	dot := nodelink.ToDOT(sys, tx, nodelink.Options{Detailed: flags.detailed, Trivial: flags.trivial})
	if format == formatDOT {
		return writeOutput(flags.output, func(w io.Writer) error {
			_, err := io.WriteString(w, dot)
			return err
		})
	}

	prog := newProgress(loggerFromContext(ctx))
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	prog.done("Rendered SVG")
	return writeOutput(flags.output, func(w io.Writer) error {
		_, err := w.Write(svg)
		return err
	})
}

func graphFormat(format, output string) (string, error) {
	switch format {
	case formatDOT, formatSVG:
		return format, nil
	case "":
	default:
		return "", zerrors.New(zerrors.ErrCodeInvalidOption, "unknown format %q (want dot or svg)", format)
	}
	if strings.EqualFold(filepath.Ext(output), ".svg") {
		return formatSVG, nil
	}
	return formatDOT, nil
}
