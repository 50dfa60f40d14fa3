package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zclosure/pkg/pipeline"
	"github.com/matzehuels/zclosure/pkg/store"
)

// runsCommand creates the runs command for managing saved runs.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage saved closure runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsGetCommand())
	cmd.AddCommand(c.runsDeleteCommand())
	cmd.AddCommand(c.runsCleanupCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(cmd *cobra.Command, fn func(store.Store) error) error {
	st, err := c.newStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st store.Store) error {
				runs, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No saved runs")
					return nil
				}
				for _, r := range runs {
					printKeyValue(r.CreatedAt.Local().Format(time.DateTime),
						fmt.Sprintf("%s  %s  %d trees · %d taxa · %d splits",
							StyleHighlight.Render(r.ID), r.Source, r.Trees, r.Taxa, r.Splits))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (0 for all)")
	return cmd
}

func (c *CLI) runsGetCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print the split system of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(format, output)
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(st store.Store) error {
				run, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := pipeline.LoadRun(run)
				if err != nil {
					return err
				}
				return writeResult(res, f, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, nexus (default: from extension, else json)")
	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted run %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) runsCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st store.Store) error {
				if err := st.Cleanup(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Removed expired runs")
				return nil
			})
		},
	}
}
