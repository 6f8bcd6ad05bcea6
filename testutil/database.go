package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"statsboard-backend/pkg/infrastructure/datastore"
)

// NewDBPool connects to the test database and applies the schema. The test is
// skipped when the database is unreachable.
func NewDBPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := datastore.NewPool(ctx)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("test database unavailable: %v", err)
	}
	if err := datastore.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return pool
}

// DropAll drops all the data from database
func DropAll(t *testing.T, pool *pgxpool.Pool) {
	t.Log("drop data from database")
	DropProject(t, pool)
}

// DropProject drops all the data from projects.
func DropProject(t *testing.T, pool *pgxpool.Pool) {
	if _, err := pool.Exec(context.Background(), `DELETE FROM projects`); err != nil {
		t.Error(err)
		t.FailNow()
	}
}
