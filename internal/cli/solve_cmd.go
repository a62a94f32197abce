package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/climbdiet/internal/cli/formatter"
	"github.com/alexanderramin/climbdiet/internal/service"
)

func newSolveCmd(app *App) *cobra.Command {
	var (
		in        inputFlags
		gap       float64
		nodeLimit int
		timeLimit time.Duration
		outPath   string
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the cheapest diet for a formulation",
		Long: `Build the chosen formulation from the catalogs, solve it and print the diet.
The plain report (--plain, or whenever output is not a terminal) follows the
format read by downstream menu tools; --out always writes that format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			base, err := in.request(ctx, app)
			if err != nil {
				return err
			}
			req := service.SolveRequest{Request: base, NodeLimit: nodeLimit, TimeLimit: timeLimit}
			if cmd.Flags().Changed("gap") {
				req.Gap = &gap
			}

			solve := func(ctx context.Context) (*service.SolveResult, error) {
				return app.Plans.Solve(ctx, req)
			}
			var res *service.SolveResult
			if app.interactive() {
				res, err = solveWithSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("solving %s diet", req.Variant), solve)
			} else {
				res, err = solve(ctx)
			}
			app.writeMetrics()
			if res == nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			fmt.Fprint(stderr, formatter.FormatSolveLine(res.Solution, res.Plan.Model.Stats()))
			if res.Run != nil {
				fmt.Fprintln(stderr, formatter.Dim("run "+res.Run.ShortID()+" recorded"))
			}
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(res.Report), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintln(stderr, formatter.Dim("report written to "+outPath))
			}

			if plain || !app.interactive() {
				fmt.Fprint(cmd.OutOrStdout(), res.Report)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDiet(res.Diet, formatter.DietView{
				Threshold: res.Policy.ReportThreshold,
				KcalMin:   res.Policy.KcalMin,
				KcalMax:   res.Policy.KcalMax,
			}))
			return nil
		},
	}

	fs := cmd.Flags()
	in.register(fs, app.Config)
	fs.Float64Var(&gap, "gap", 0, "Relative MIP gap (default: the policy's gap for the variant)")
	fs.IntVar(&nodeLimit, "node-limit", app.Config.NodeLimit, "Stop after this many branch-and-bound nodes (0 = no limit)")
	fs.DurationVar(&timeLimit, "time-limit", app.Config.TimeLimit, "Stop after this long (0 = no limit)")
	fs.StringVar(&outPath, "out", "", "Also write the plain report to this file")
	fs.BoolVar(&plain, "plain", false, "Print the plain report even in a terminal")

	return cmd
}

func (a *App) writeMetrics() {
	if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.logger().Warn("writing metrics textfile", zap.String("path", a.Config.MetricsFile), zap.Error(err))
	}
}
