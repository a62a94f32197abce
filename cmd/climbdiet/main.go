package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/climbdiet/internal/cli"
	"github.com/alexanderramin/climbdiet/internal/config"
	"github.com/alexanderramin/climbdiet/internal/db"
	"github.com/alexanderramin/climbdiet/internal/logging"
	"github.com/alexanderramin/climbdiet/internal/metrics"
	"github.com/alexanderramin/climbdiet/internal/repository"
	"github.com/alexanderramin/climbdiet/internal/service"
	"github.com/alexanderramin/climbdiet/internal/solver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// History is optional; a nil unit of work keeps the solve path in memory.
	var (
		uow  db.UnitOfWork
		runs service.RunService
	)
	if !cfg.NoHistory {
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		sqlUoW := db.NewSQLiteUnitOfWork(database)
		uow = sqlUoW
		runs = service.NewRunService(repository.NewSQLiteRunRepo(database), sqlUoW)
	}

	recorder := metrics.NewRecorder()
	svcLog := log.Named("service")
	plans := service.NewPlanService(
		service.FileLoader{},
		solver.NewBranchAndBound(),
		uow,
		recorder,
		log,
		service.NewLogUseCaseObserver(svcLog),
	)

	app := &cli.App{
		Plans:   plans,
		Runs:    runs,
		Config:  cfg,
		Metrics: recorder,
		Log:     svcLog,
	}

	// Detect interactive terminal for the variant picker and spinner.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
