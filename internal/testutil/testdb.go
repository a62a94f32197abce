package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/climbdiet/internal/db"
)

// NewTestDB opens a migrated in-memory run history that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(db.Memory)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// NewTestStore returns a test database together with its unit of work.
func NewTestStore(t *testing.T) (*sql.DB, db.UnitOfWork) {
	t.Helper()
	conn := NewTestDB(t)
	return conn, db.NewSQLiteUnitOfWork(conn)
}
