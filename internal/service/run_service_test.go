package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/repository"
	"github.com/alexanderramin/climbdiet/internal/solver"
	"github.com/alexanderramin/climbdiet/internal/testutil"
)

func setupRunService(t *testing.T) (RunService, repository.RunRepo) {
	t.Helper()
	conn, uow := testutil.NewTestStore(t)
	runs := repository.NewSQLiteRunRepo(conn)
	return NewRunService(runs, uow), runs
}

func TestRunService_ListGetDelete(t *testing.T) {
	svc, runs := setupRunService(t)
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)
	for i, id := range []string{"1111aaaa-0", "2222bbbb-0", "2222cccc-0"} {
		require.NoError(t, runs.Create(ctx, testutil.NewTestRun(
			testutil.WithRunID(id),
			testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)),
		)))
	}

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2222cccc-0", list[0].ID)

	run, err := svc.Get(ctx, "1111")
	require.NoError(t, err)
	assert.Equal(t, "1111aaaa-0", run.ID)
	assert.Len(t, run.Quantities, 2)

	_, err = svc.Get(ctx, "2222")
	assert.ErrorIs(t, err, repository.ErrAmbiguous)

	assert.ErrorIs(t, svc.Delete(ctx, "2222"), repository.ErrAmbiguous)
	require.NoError(t, svc.Delete(ctx, "2222b"))
	assert.ErrorIs(t, svc.Delete(ctx, "2222b"), repository.ErrNotFound)

	list, err = svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRunService_SeesSolvedRuns(t *testing.T) {
	conn, uow := testutil.NewTestStore(t)
	plans := NewPlanService(macroLoader(), solver.NewBranchAndBound(), uow, nil, nil)
	runs := NewRunService(repository.NewSQLiteRunRepo(conn), uow)
	ctx := context.Background()

	res, err := plans.Solve(ctx, dailyRequest())
	require.NoError(t, err)

	got, err := runs.Get(ctx, res.Run.ShortID())
	require.NoError(t, err)
	assert.Equal(t, domain.VariantDaily, got.Variant)
	assert.Equal(t, res.Report, got.Report)
}

func TestLogUseCaseObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewLogUseCaseObserver(zap.New(core))

	svc := NewPlanService(macroLoader(), solver.NewBranchAndBound(), nil, nil, nil, nil, obs)
	_, err := svc.Solve(context.Background(), dailyRequest())
	require.NoError(t, err)

	failing := NewPlanService(macroLoader(), &stubSolver{err: errors.New("boom")}, nil, nil, nil, obs)
	_, err = failing.Solve(context.Background(), dailyRequest())
	require.Error(t, err)

	entries := logs.FilterField(zap.String("use_case", "solve")).All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "optimal", entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "service use case failed", entries[1].Message)

	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}
