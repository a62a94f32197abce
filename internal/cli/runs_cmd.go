package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/climbdiet/internal/cli/formatter"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the history of solves",
	}

	cmd.AddCommand(
		newRunsListCmd(app),
		newRunsShowCmd(app),
		newRunsDeleteCmd(app),
	)

	return cmd
}

func newRunsListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Runs == nil {
				return errNoHistory
			}
			runs, err := app.Runs.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRuns(runs, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show (0 = all)")
	return cmd
}

func newRunsShowCmd(app *App) *cobra.Command {
	var reportOnly bool

	cmd := &cobra.Command{
		Use:   "show <id-prefix>",
		Short: "Show a run and its diet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Runs == nil {
				return errNoHistory
			}
			run, err := app.Runs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if reportOnly {
				if run.Report == "" {
					return fmt.Errorf("run %s has no diet (%s)", run.ShortID(), run.Status)
				}
				fmt.Fprint(cmd.OutOrStdout(), run.Report)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRun(run, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reportOnly, "report", false, "Print only the plain report")
	return cmd
}

func newRunsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-prefix>",
		Short: "Delete a run from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Runs == nil {
				return errNoHistory
			}
			if err := app.Runs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}
