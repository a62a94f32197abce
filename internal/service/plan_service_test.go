package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/climbdiet/internal/diet"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/metrics"
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/repository"
	"github.com/alexanderramin/climbdiet/internal/solver"
	fixtures "github.com/alexanderramin/climbdiet/internal/testutil"
)

// stubSolver returns a fixed outcome and remembers the options it was given.
type stubSolver struct {
	sol  *solver.Solution
	err  error
	opts solver.Options
}

func (s *stubSolver) Solve(_ context.Context, _ *milp.Model, opts ...solver.Option) (*solver.Solution, error) {
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s.sol, s.err
}

func dailyRequest() SolveRequest {
	return SolveRequest{Request: Request{Variant: domain.VariantDaily, FoodsPath: "foods.json"}}
}

func macroLoader() InputLoader {
	return StaticLoader{Inputs: Inputs{Foods: fixtures.MacroCatalog()}}
}

func TestSolve_DailyRecordsRun(t *testing.T) {
	conn, uow := fixtures.NewTestStore(t)
	rec := metrics.NewRecorder()
	svc := NewPlanService(macroLoader(), solver.NewBranchAndBound(), uow, rec, nil)

	res, err := svc.Solve(context.Background(), dailyRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Diet)
	assert.InDelta(t, 8.216667, res.Diet.Cost, 1e-5)
	assert.Contains(t, res.Report, "  harina: 290.00 g\n")
	assert.Contains(t, res.Report, "Coste total: 8.22 €")

	require.NotNil(t, res.Run)
	stored, err := repository.NewSQLiteRunRepo(conn).GetByID(context.Background(), res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunOptimal, stored.Status)
	assert.Equal(t, "foods.json", stored.FoodsPath)
	assert.Empty(t, stored.RecipesPath)
	require.NotNil(t, stored.Cost)
	assert.InDelta(t, 8.216667, *stored.Cost, 1e-5)
	assert.Equal(t, res.Report, stored.Report)
	assert.Equal(t, res.Plan.Skipped, stored.Skipped)
	require.Len(t, stored.Quantities, 3)
	assert.InDelta(t, 290+217.5+96.666667, stored.TotalGrams(), 1e-4)

	assert.Equal(t, 1, testutil.CollectAndCount(rec.Registry(), "climbdiet_solves_total"))
}

func TestSolve_WithoutHistory(t *testing.T) {
	svc := NewPlanService(macroLoader(), solver.NewBranchAndBound(), nil, nil, nil)

	res, err := svc.Solve(context.Background(), dailyRequest())
	require.NoError(t, err)
	assert.Nil(t, res.Run)
	assert.NotEmpty(t, res.Report)
}

func TestSolve_NotOptimal(t *testing.T) {
	tests := []struct {
		name       string
		sol        *solver.Solution
		wantStatus domain.RunStatus
		wantReason string
	}{
		{"infeasible", &solver.Solution{Status: solver.StatusInfeasible, Nodes: 1}, domain.RunInfeasible, "infeasible"},
		{"node limit", &solver.Solution{Status: solver.StatusOther, Nodes: 50, Reason: "node limit 50 reached"}, domain.RunOther, "other: node limit 50 reached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, uow := fixtures.NewTestStore(t)
			svc := NewPlanService(macroLoader(), &stubSolver{sol: tt.sol}, uow, metrics.NewRecorder(), nil)

			res, err := svc.Solve(context.Background(), dailyRequest())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoOptimalDiet))
			assert.Contains(t, err.Error(), tt.wantReason)

			require.NotNil(t, res)
			assert.Nil(t, res.Diet)
			assert.Empty(t, res.Report)

			stored, err := repository.NewSQLiteRunRepo(conn).GetByID(context.Background(), res.Run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Nil(t, stored.Cost)
			assert.Empty(t, stored.Quantities)
			assert.Zero(t, stored.Bound)
		})
	}
}

func TestSolve_SolverErrorRecordsNothing(t *testing.T) {
	conn, uow := fixtures.NewTestStore(t)
	svc := NewPlanService(macroLoader(), &stubSolver{err: solver.ErrModelTooLarge}, uow, nil, nil)

	res, err := svc.Solve(context.Background(), dailyRequest())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, solver.ErrModelTooLarge))

	runs, err := repository.NewSQLiteRunRepo(conn).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSolve_HistoryWriteRollsBack(t *testing.T) {
	conn := fixtures.NewTestDB(t)
	// The second exec is the first quantity row.
	uow := &fixtures.FailOnNthExecUoW{DB: conn, FailOn: 2, Err: errors.New("disk full")}
	svc := NewPlanService(macroLoader(), solver.NewBranchAndBound(), uow, nil, nil)

	_, err := svc.Solve(context.Background(), dailyRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording run")
	assert.Contains(t, err.Error(), "disk full")

	runs, err := repository.NewSQLiteRunRepo(conn).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSolve_SolverOptions(t *testing.T) {
	stub := &stubSolver{sol: &solver.Solution{Status: solver.StatusInfeasible}}
	svc := NewPlanService(StaticLoader{Inputs: Inputs{Foods: fixtures.SlotsCatalog()}}, stub, nil, nil, nil)

	req := SolveRequest{Request: Request{Variant: domain.VariantWeekly}, NodeLimit: 10, TimeLimit: 3 * time.Second}
	_, err := svc.Solve(context.Background(), req)
	require.ErrorIs(t, err, ErrNoOptimalDiet)
	assert.InDelta(t, 0.028, stub.opts.RelGap, 1e-12)
	assert.Equal(t, 10, stub.opts.NodeLimit)
	assert.Equal(t, 3*time.Second, stub.opts.TimeLimit)
	assert.NotNil(t, stub.opts.Logger)

	gap := 0.5
	req.Gap = &gap
	_, _ = svc.Solve(context.Background(), req)
	assert.InDelta(t, 0.5, stub.opts.RelGap, 1e-12)
}

func TestSolve_BuildErrors(t *testing.T) {
	svc := NewPlanService(StaticLoader{Inputs: Inputs{Foods: fixtures.SlotsCatalog()}}, &stubSolver{}, nil, nil, nil)

	_, err := svc.Solve(context.Background(), SolveRequest{Request: Request{Variant: domain.VariantRecipes}})
	require.Error(t, err)
	assert.ErrorIs(t, err, diet.ErrMissingRecipes)

	_, err = svc.Solve(context.Background(), SolveRequest{Request: Request{Variant: "monthly"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variant")
}

func TestValidate(t *testing.T) {
	svc := NewPlanService(macroLoader(), &stubSolver{}, nil, nil, nil)

	sum, err := svc.Validate(context.Background(), Request{Variant: domain.VariantDaily})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Foods)
	assert.Zero(t, sum.Recipes)
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryCereals: 1,
		domain.CategoryEggs:    1,
		domain.CategorySugars:  1,
		domain.CategoryFats:    1,
	}, sum.ByCategory)
	assert.Equal(t, 4, sum.Stats.Vars)
	assert.Zero(t, sum.Stats.Binaries)
	assert.Equal(t, 8, sum.Stats.Constraints)
}

func TestExport(t *testing.T) {
	svc := NewPlanService(macroLoader(), &stubSolver{}, nil, nil, nil)

	var buf bytes.Buffer
	stats, err := svc.Export(context.Background(), Request{Variant: domain.VariantDaily}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Vars)
	out := buf.String()
	assert.Contains(t, out, "Minimize\n")
	assert.Contains(t, out, "Subject To\n")
	assert.Contains(t, out, "kcal_min")
}

func TestQuantities_MergesDuplicateRecipeNames(t *testing.T) {
	d := &diet.Diet{Days: []diet.Day{{Number: 3, Meals: []diet.Meal{{
		Slot: domain.SlotSnack,
		Recipes: []diet.ChosenRecipe{
			{Index: 0, Name: domain.DefaultRecipeName, Ingredients: []diet.Portion{{Food: "yogur", Grams: 125}}},
			{Index: 1, Name: domain.DefaultRecipeName, Ingredients: []diet.Portion{{Food: "yogur", Grams: 75}, {Food: "nueces", Grams: 20}}},
		},
		Foods: []diet.Portion{{Food: "yogur", Grams: 10}},
	}}}}}

	assert.Equal(t, []domain.RunQuantity{
		{Day: 3, Slot: domain.SlotSnack, Recipe: domain.DefaultRecipeName, Food: "yogur", Grams: 200},
		{Day: 3, Slot: domain.SlotSnack, Recipe: domain.DefaultRecipeName, Food: "nueces", Grams: 20},
		{Day: 3, Slot: domain.SlotSnack, Food: "yogur", Grams: 10},
	}, quantities(d))
}

const foodsJSON = `{
  "harina": {"Precio (€/100g)": 1, "Energía (Kcal)": 400, "Hidratos de carbono (g)": 100, "Proteínas (g)": 0,
             "Lípidos totales (g)": 0, "Categoría": "Cereales y derivados", "Máximo (g/día)": 500},
  "clara":  {"Precio (€/100g)": 2, "Energía (Kcal)": 400, "Hidratos de carbono (g)": 0, "Proteínas (g)": 100,
             "Lípidos totales (g)": 0, "Categoría": "Huevos", "Máximo (g/día)": 500},
  "aceite": {"Precio (€/100g)": 1, "Energía (Kcal)": 900, "Hidratos de carbono (g)": 0, "Proteínas (g)": 0,
             "Lípidos totales (g)": 100, "Categoría": "Aceites y grasas", "Máximo (g/día)": 500}
}`

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	foods := filepath.Join(dir, "foods.json")
	require.NoError(t, os.WriteFile(foods, []byte(foodsJSON), 0o644))

	t.Run("recipes are not read for daily", func(t *testing.T) {
		in, err := FileLoader{}.Load(context.Background(), Request{
			Variant:     domain.VariantDaily,
			FoodsPath:   foods,
			RecipesPath: filepath.Join(dir, "missing.json"),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, in.Foods.Len())
		assert.Nil(t, in.Recipes)
		assert.InDelta(t, 2900, in.Policy.KcalMin, 1e-12)
	})

	t.Run("recipes are required for recipes", func(t *testing.T) {
		_, err := FileLoader{}.Load(context.Background(), Request{
			Variant:     domain.VariantRecipes,
			FoodsPath:   foods,
			RecipesPath: filepath.Join(dir, "missing.json"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading recipes")
	})

	t.Run("policy overlay", func(t *testing.T) {
		pol := filepath.Join(dir, "policy.yaml")
		require.NoError(t, os.WriteFile(pol, []byte("report_threshold: 5\n"), 0o644))
		in, err := FileLoader{}.Load(context.Background(), Request{Variant: domain.VariantDaily, FoodsPath: foods, PolicyPath: pol})
		require.NoError(t, err)
		assert.InDelta(t, 5, in.Policy.ReportThreshold, 1e-12)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := FileLoader{}.Load(ctx, Request{Variant: domain.VariantDaily, FoodsPath: foods})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("solves from files", func(t *testing.T) {
		svc := NewPlanService(FileLoader{}, solver.NewBranchAndBound(), nil, nil, nil)
		res, err := svc.Solve(context.Background(), SolveRequest{Request: Request{Variant: domain.VariantDaily, FoodsPath: foods}})
		require.NoError(t, err)
		assert.InDelta(t, 8.216667, res.Diet.Cost, 1e-5)
	})
}
