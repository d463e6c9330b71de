//go:build integration

// Package testdb starts a disposable PostgreSQL container with the eventhub
// schema applied, for integration tests.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/eleven-am/eventhub/internal/store"
)

// TestDB provides a migrated test database connection
type TestDB struct {
	DB      *sqlx.DB
	ConnStr string
	t       *testing.T
}

// New starts a container, applies the embedded migrations and registers cleanup.
// It skips the test in short mode or when Docker is unavailable.
func New(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("Skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := postgres.Run(ctx, "postgres:17",
		postgres.WithDatabase("eventhub"),
		postgres.WithUsername("eventhub"),
		postgres.WithPassword("eventhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := store.NewDBConfig(connStr).Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := store.NewMigrator(db.DB)
	require.NoError(t, err)
	_, err = m.Up(ctx)
	require.NoError(t, err, "failed to apply migrations")

	return &TestDB{DB: db, ConnStr: connStr, t: t}
}

// Truncate empties the given tables, cascading to dependents
func (tdb *TestDB) Truncate(tables ...string) {
	tdb.t.Helper()
	if len(tables) == 0 {
		return
	}
	_, err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", ")))
	require.NoError(tdb.t, err)
}

// Count returns the number of rows in a table
func (tdb *TestDB) Count(table string) int {
	tdb.t.Helper()
	var n int
	require.NoError(tdb.t, tdb.DB.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)))
	return n
}
