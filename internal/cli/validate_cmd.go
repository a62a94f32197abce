package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/climbdiet/internal/cli/formatter"
)

func newValidateCmd(app *App) *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the catalogs and policy and report the model size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := in.request(ctx, app)
			if err != nil {
				return err
			}
			sum, err := app.Plans.Validate(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(sum))
			return nil
		},
	}

	in.register(cmd.Flags(), app.Config)
	return cmd
}
