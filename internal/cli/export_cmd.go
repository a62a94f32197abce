package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/climbdiet/internal/cli/formatter"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		in     inputFlags
		lpPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the model in LP format for an external MILP solver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := in.request(ctx, app)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if lpPath != "-" {
				f, err := os.Create(lpPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", lpPath, err)
				}
				defer f.Close()
				w = f
			}

			stats, err := app.Plans.Export(ctx, req, w)
			if err != nil {
				return err
			}
			if lpPath != "-" {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim(fmt.Sprintf("wrote %s to %s", stats, lpPath)))
			}
			return nil
		},
	}

	in.register(cmd.Flags(), app.Config)
	cmd.Flags().StringVar(&lpPath, "lp", "-", "Output file, or - for stdout")
	return cmd
}
