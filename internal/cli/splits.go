package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zclosure/pkg/extract"
	zio "github.com/matzehuels/zclosure/pkg/io"
	"github.com/matzehuels/zclosure/pkg/pipeline"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// splitsCommand creates the splits command, which lists the partial splits
// of every input tree without closing them.
func (c *CLI) splitsCommand() *cobra.Command {
	var (
		taxaFile   string
		hide       []string
		nonTrivial bool
	)

	cmd := &cobra.Command{
		Use:   "splits <trees.nwk|->",
		Short: "List the partial splits of each tree",
		Example: `  zclosure splits trees.nwk
  zclosure splits trees.nwk --non-trivial --hide outgroup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args[0])
			if err != nil {
				return err
			}
			opts := c.cfg().Pipeline
			if cmd.Flags().Changed("hide") {
				opts.Hide = hide
			}
			if taxaFile != "" {
				tx, err := zio.ImportTaxa(taxaFile)
				if err != nil {
					return err
				}
				opts.Taxa = tx.Labels()
			}

			trees, tx, err := pipeline.Parse(input, opts)
			if err != nil {
				return err
			}
			results, err := pipeline.Extract(cmd.Context(), trees, tx)
			if err != nil {
				return err
			}
			return writeSplits(os.Stdout, results, tx, nonTrivial)
		},
	}

	cmd.Flags().StringVar(&taxaFile, "taxa", "", "file with the taxon order, one label per line")
	cmd.Flags().StringSliceVar(&hide, "hide", nil, "taxa to leave out")
	cmd.Flags().BoolVar(&nonTrivial, "non-trivial", false, "only list splits with at least two taxa on each side")

	return cmd
}

// writeSplits prints one block per tree: its support and then each partial
// split with its weight.
func writeSplits(w io.Writer, results []*extract.Result, tx *taxa.Taxa, nonTrivial bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(tw, "# tree %d: %d taxa\n", r.Index, r.Support.Len())
		for _, ps := range r.Splits.Splits() {
			if nonTrivial && !ps.NonTrivial() {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\n", ps.Format(tx), strconv.FormatFloat(ps.Weight, 'g', -1, 64))
		}
	}
	return tw.Flush()
}
