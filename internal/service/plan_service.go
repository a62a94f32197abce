package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexanderramin/climbdiet/internal/db"
	"github.com/alexanderramin/climbdiet/internal/diet"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/metrics"
	"github.com/alexanderramin/climbdiet/internal/milp"
	"github.com/alexanderramin/climbdiet/internal/report"
	"github.com/alexanderramin/climbdiet/internal/repository"
	"github.com/alexanderramin/climbdiet/internal/solver"
)

// ErrNoOptimalDiet is returned by Solve when the solver ends without a
// proven optimum. The SolveResult is still returned.
var ErrNoOptimalDiet = errors.New("no optimal diet")

type planService struct {
	loader   InputLoader
	solver   solver.Solver
	uow      db.UnitOfWork
	recorder *metrics.Recorder
	log      *zap.Logger
	observer UseCaseObserver
	now      func() time.Time
}

// NewPlanService wires the solve pipeline. A nil uow keeps no run history
// and a nil recorder records no metrics.
func NewPlanService(
	loader InputLoader,
	slv solver.Solver,
	uow db.UnitOfWork,
	recorder *metrics.Recorder,
	log *zap.Logger,
	observers ...UseCaseObserver,
) PlanService {
	if log == nil {
		log = zap.NewNop()
	}
	return &planService{
		loader:   loader,
		solver:   slv,
		uow:      uow,
		recorder: recorder,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *planService) build(ctx context.Context, req Request) (*Inputs, *diet.Plan, error) {
	in, err := s.loader.Load(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	plan, err := diet.NewBuilder(in.Foods, in.Recipes, in.Policy, s.log.Named("diet")).Build(req.Variant)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s model: %w", req.Variant, err)
	}
	return in, plan, nil
}

func (s *planService) Solve(ctx context.Context, req SolveRequest) (res *SolveResult, err error) {
	startedAt := s.now()
	fields := map[string]any{"variant": string(req.Variant)}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "solve",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	in, plan, err := s.build(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	stats := plan.Model.Stats()
	fields["vars"] = stats.Vars
	fields["constraints"] = stats.Constraints

	gap := plan.Gap
	if req.Gap != nil {
		gap = *req.Gap
	}
	opts := []solver.Option{solver.WithRelGap(gap), solver.WithLogger(s.log.Named("solver"))}
	if req.NodeLimit > 0 {
		opts = append(opts, solver.WithNodeLimit(req.NodeLimit))
	}
	if req.TimeLimit > 0 {
		opts = append(opts, solver.WithTimeLimit(req.TimeLimit))
	}

	sol, err := s.solver.Solve(ctx, plan.Model, opts...)
	if err != nil {
		return nil, fmt.Errorf("solving %s model: %w", req.Variant, err)
	}
	fields["status"] = sol.Status.String()
	fields["nodes"] = sol.Nodes

	res = &SolveResult{Plan: plan, Policy: in.Policy, Solution: sol}
	if sol.Optimal() {
		if res.Diet, err = diet.Extract(plan, sol); err != nil {
			return nil, fmt.Errorf("reading solution: %w", err)
		}
		res.Report = report.Render(res.Diet, in.Policy.ReportThreshold)
		fields["cost"] = res.Diet.Cost
	} else if _, ok := sol.Incumbent(); ok {
		fields["incumbent"] = sol.Objective
	}

	run := s.newRun(req, plan, sol, res)
	s.recorder.Observe(metrics.Solve{
		Variant:     string(req.Variant),
		Status:      sol.Status.String(),
		Elapsed:     sol.Elapsed,
		Nodes:       sol.Nodes,
		Vars:        stats.Vars,
		Constraints: stats.Constraints,
		Cost:        run.Cost,
		Skipped:     plan.Skipped,
	})
	if s.uow != nil {
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteRunRepo(tx).Create(ctx, run)
		})
		if err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
		res.Run = run
		fields["run"] = run.ShortID()
	}

	if !sol.Optimal() {
		reason := sol.Status.String()
		if sol.Reason != "" {
			reason += ": " + sol.Reason
		}
		return res, fmt.Errorf("%w (%s)", ErrNoOptimalDiet, reason)
	}
	s.log.Info("diet found",
		zap.String("variant", string(req.Variant)),
		zap.Float64("cost", res.Diet.Cost),
		zap.Int("nodes", sol.Nodes),
		zap.Duration("elapsed", sol.Elapsed))
	return res, nil
}

func (s *planService) newRun(req SolveRequest, plan *diet.Plan, sol *solver.Solution, res *SolveResult) *domain.Run {
	stats := plan.Model.Stats()
	run := &domain.Run{
		ID:             uuid.New().String(),
		Variant:        req.Variant,
		Status:         runStatus(sol.Status),
		Reason:         sol.Reason,
		Nodes:          sol.Nodes,
		Elapsed:        sol.Elapsed,
		NumVars:        stats.Vars,
		NumConstraints: stats.Constraints,
		FoodsPath:      req.FoodsPath,
		Skipped:        plan.Skipped,
		Report:         res.Report,
		CreatedAt:      s.now().UTC(),
	}
	if req.Variant.NeedsRecipes() {
		run.RecipesPath = req.RecipesPath
	}
	if !math.IsInf(sol.Bound, 0) && !math.IsNaN(sol.Bound) {
		run.Bound = sol.Bound
	}
	if res.Diet != nil {
		cost := res.Diet.Cost
		run.Cost = &cost
		run.Quantities = quantities(res.Diet)
		if g := sol.Gap(); !math.IsNaN(g) {
			run.Gap = g
		}
	}
	return run
}

func runStatus(st solver.Status) domain.RunStatus {
	switch st {
	case solver.StatusOptimal:
		return domain.RunOptimal
	case solver.StatusInfeasible:
		return domain.RunInfeasible
	default:
		return domain.RunOther
	}
}

// quantities flattens a diet for storage. Portions sharing a day, slot,
// recipe name and food are summed, which only happens when two identically
// named recipes are chosen for one slot.
func quantities(d *diet.Diet) []domain.RunQuantity {
	type key struct {
		day    int
		slot   domain.Slot
		recipe string
		food   string
	}
	index := make(map[key]int)
	var out []domain.RunQuantity
	add := func(day int, slot domain.Slot, recipe string, p diet.Portion) {
		k := key{day, slot, recipe, p.Food}
		if i, ok := index[k]; ok {
			out[i].Grams += p.Grams
			return
		}
		index[k] = len(out)
		out = append(out, domain.RunQuantity{Day: day, Slot: slot, Recipe: recipe, Food: p.Food, Grams: p.Grams})
	}
	for _, day := range d.Days {
		for _, m := range day.Meals {
			for _, r := range m.Recipes {
				for _, p := range r.Ingredients {
					add(day.Number, m.Slot, r.Name, p)
				}
			}
			for _, p := range m.Foods {
				add(day.Number, m.Slot, "", p)
			}
		}
	}
	return out
}

func (s *planService) Validate(ctx context.Context, req Request) (*Summary, error) {
	in, plan, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		Variant:    req.Variant,
		Foods:      in.Foods.Len(),
		Recipes:    in.Recipes.Count(),
		ByCategory: make(map[domain.Category]int),
		Stats:      plan.Model.Stats(),
		Skipped:    plan.Skipped,
	}
	for _, c := range domain.AllCategories() {
		if n := len(in.Foods.InCategory(c)); n > 0 {
			sum.ByCategory[c] = n
		}
	}
	return sum, nil
}

func (s *planService) Export(ctx context.Context, req Request, w io.Writer) (milp.Stats, error) {
	_, plan, err := s.build(ctx, req)
	if err != nil {
		return milp.Stats{}, err
	}
	if err := milp.WriteLP(w, plan.Model); err != nil {
		return milp.Stats{}, fmt.Errorf("writing LP: %w", err)
	}
	return plan.Model.Stats(), nil
}
