// Package testutil поднимает PostgreSQL для интеграционных тестов.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
)

// SetupTestDB returns a migrated pool. It uses TEST_DATABASE_URL when set,
// starts a container when TEST_CONTAINERS=1 and skips the test otherwise.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	connStr := os.Getenv("TEST_DATABASE_URL")
	terminate := func() {}

	if connStr == "" {
		if os.Getenv("TEST_CONTAINERS") != "1" {
			t.Skip("set TEST_DATABASE_URL or TEST_CONTAINERS=1 to run PostgreSQL tests")
		}

		// Создаем PostgreSQL контейнер
		pgContainer, err := postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			t.Fatalf("Failed to start postgres container: %v", err)
		}
		terminate = func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				t.Errorf("Failed to terminate container: %v", err)
			}
		}

		connStr, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			terminate()
			t.Fatalf("Failed to get connection string: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		terminate()
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		terminate()
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := repo.Migrate(ctx, pool); err != nil {
		pool.Close()
		terminate()
		t.Fatalf("Failed to migrate database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		terminate()
	}

	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE tasks, employees RESTART IDENTITY")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}
