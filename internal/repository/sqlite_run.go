package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/climbdiet/internal/db"
	"github.com/alexanderramin/climbdiet/internal/domain"
)

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

const runColumns = `id, variant, status, reason, cost, bound, gap, nodes, elapsed_ms,
	num_vars, num_constraints, foods_path, recipes_path, skipped, report, created_at`

// Create inserts the run and its quantities. Callers wanting both to land
// together pass a transaction.
func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		string(run.Variant),
		string(run.Status),
		run.Reason,
		nullableFloat(run.Cost),
		run.Bound,
		run.Gap,
		run.Nodes,
		run.Elapsed.Milliseconds(),
		run.NumVars,
		run.NumConstraints,
		run.FoodsPath,
		run.RecipesPath,
		joinLines(run.Skipped),
		run.Report,
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, q := range run.Quantities {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO run_quantities (run_id, day, slot, recipe, food, grams) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, q.Day, q.Slot.String(), q.Recipe, q.Food, q.Grams,
		)
		if err != nil {
			return fmt.Errorf("inserting quantity %s of run %s: %w", q.Food, run.ShortID(), err)
		}
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	if run.Quantities, err = r.ListQuantities(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// GetByPrefix resolves a run from the leading characters of its ID, as
// shown in listings.
func (r *SQLiteRunRepo) GetByPrefix(ctx context.Context, prefix string) (*domain.Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("run: %w", ErrNotFound)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("looking up run %s: %w", prefix, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("run %s: %w", prefix, ErrNotFound)
	case 1:
		return r.GetByID(ctx, ids[0])
	default:
		return nil, fmt.Errorf("run %s: %w", prefix, ErrAmbiguous)
	}
}

// List returns the most recent runs first, without quantities. A limit of
// zero or less lists everything.
func (r *SQLiteRunRepo) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListQuantities returns a run's quantities by day, serving order and food.
func (r *SQLiteRunRepo) ListQuantities(ctx context.Context, runID string) ([]domain.RunQuantity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day, slot, recipe, food, grams
		FROM run_quantities WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing quantities: %w", err)
	}
	defer rows.Close()

	var out []domain.RunQuantity
	for rows.Next() {
		var (
			q    domain.RunQuantity
			slot string
		)
		if err := rows.Scan(&q.Day, &slot, &q.Recipe, &q.Food, &q.Grams); err != nil {
			return nil, fmt.Errorf("scanning quantity: %w", err)
		}
		if q.Slot, err = domain.LookupSlot(slot); err != nil {
			return nil, fmt.Errorf("quantity of run %s: %w", runID, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quantities: %w", err)
	}
	sortQuantities(out)
	return out, nil
}

func (r *SQLiteRunRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var (
		run                domain.Run
		variant, status    string
		cost               sql.NullFloat64
		elapsedMs          int64
		skipped, createdAt string
	)
	err := s.Scan(
		&run.ID, &variant, &status, &run.Reason, &cost, &run.Bound, &run.Gap, &run.Nodes, &elapsedMs,
		&run.NumVars, &run.NumConstraints, &run.FoodsPath, &run.RecipesPath, &skipped, &run.Report, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Variant = domain.Variant(variant)
	run.Status = domain.RunStatus(status)
	run.Cost = floatPtr(cost)
	run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	run.Skipped = splitLines(skipped)
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("run %s created_at: %w", run.ID, err)
	}
	return &run, nil
}
