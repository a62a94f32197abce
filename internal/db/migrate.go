package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement in order. Statements are
// idempotent, so it is safe to run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		variant         TEXT NOT NULL
		                CHECK(variant IN ('daily','slots','weekly','recipes')),
		status          TEXT NOT NULL
		                CHECK(status IN ('optimal','infeasible','other')),
		reason          TEXT NOT NULL DEFAULT '',
		cost            REAL,
		bound           REAL NOT NULL DEFAULT 0,
		nodes           INTEGER NOT NULL DEFAULT 0,
		elapsed_ms      INTEGER NOT NULL DEFAULT 0,
		num_vars        INTEGER NOT NULL DEFAULT 0,
		num_constraints INTEGER NOT NULL DEFAULT 0,
		foods_path      TEXT NOT NULL DEFAULT '',
		recipes_path    TEXT NOT NULL DEFAULT '',
		report          TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,

	`CREATE TABLE IF NOT EXISTS run_quantities (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		day    INTEGER NOT NULL CHECK(day >= 1),
		slot   TEXT NOT NULL,
		recipe TEXT NOT NULL DEFAULT '',
		food   TEXT NOT NULL,
		grams  REAL NOT NULL CHECK(grams >= 0),
		PRIMARY KEY (run_id, day, slot, recipe, food)
	)`,

	// Added after the first release.
	`ALTER TABLE runs ADD COLUMN gap REAL NOT NULL DEFAULT 0`,
	`ALTER TABLE runs ADD COLUMN skipped TEXT NOT NULL DEFAULT ''`,
}
