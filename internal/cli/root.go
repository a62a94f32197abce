package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderramin/climbdiet/internal/config"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/metrics"
	"github.com/alexanderramin/climbdiet/internal/service"
)

// errNoHistory is returned by the runs commands when history is disabled.
var errNoHistory = errors.New("run history is disabled (CLIMBDIET_NO_HISTORY)")

// App holds what the commands need. Runs is nil when no history is kept.
type App struct {
	Plans   service.PlanService
	Runs    service.RunService
	Config  config.Config
	Metrics *metrics.Recorder
	Log     *zap.Logger

	// IsInteractive reports whether stdin is a terminal. Interactive runs
	// get the variant picker and the solve spinner.
	IsInteractive func() bool
	// PickVariant asks the user for a formulation; defaults to a huh select.
	PickVariant func(ctx context.Context) (domain.Variant, error)
	// Now is the clock used for relative timestamps.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// NewRootCmd creates the top-level "climbdiet" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "climbdiet",
		Short:         "Cheapest diet meeting a climber's nutrient targets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSolveCmd(app),
		newValidateCmd(app),
		newExportCmd(app),
		newRunsCmd(app),
	)

	return root
}
