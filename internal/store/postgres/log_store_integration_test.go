//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/zenitmed/siteapi/internal/models"
)

func setupPostgresPool(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	// Start postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestIntegration_LogStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresPool(t, ctx)
	defer cleanup()

	store := NewLogStore(pool)

	t.Run("append assigns id and timestamp", func(t *testing.T) {
		rec := &models.LogRecord{
			Level:   models.LogLevelInfo,
			Message: "server started",
			Context: "api",
			Metadata: map[string]any{
				"version": "test",
			},
			IPAddress: "10.1.2.3",
			Path:      "/health",
		}
		require.NoError(t, store.Append(ctx, rec))
		require.NotZero(t, rec.ID)
		require.False(t, rec.CreatedAt.IsZero())
	})

	t.Run("list filters by level", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, &models.LogRecord{Level: models.LogLevelError, Message: "boom", Context: "api"}))

		records, total, err := store.List(ctx, models.LogFilter{Level: models.LogLevelError})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, "boom", records[0].Message)
	})

	t.Run("list after cursor is strict and ordered", func(t *testing.T) {
		cursor := time.Now()
		time.Sleep(10 * time.Millisecond)

		for _, msg := range []string{"one", "two", "three"} {
			require.NoError(t, store.Append(ctx, &models.LogRecord{Level: models.LogLevelInfo, Message: msg}))
			time.Sleep(2 * time.Millisecond)
		}

		records, err := store.ListAfter(ctx, cursor, 50)
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, "one", records[0].Message)
		require.Equal(t, "three", records[2].Message)

		// Advancing the cursor to the last record delivers nothing new.
		records, err = store.ListAfter(ctx, records[2].CreatedAt, 50)
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("purge removes old records and reports remaining", func(t *testing.T) {
		old := &models.LogRecord{Level: models.LogLevelInfo, Message: "ancient", CreatedAt: time.Now().AddDate(0, 0, -60)}
		require.NoError(t, store.Append(ctx, old))

		remaining, err := store.Purge(ctx, time.Now().AddDate(0, 0, -30))
		require.NoError(t, err)
		require.GreaterOrEqual(t, remaining, 1)

		records, _, err := store.List(ctx, models.LogFilter{})
		require.NoError(t, err)
		for _, rec := range records {
			require.NotEqual(t, "ancient", rec.Message)
		}
	})
}

func TestIntegration_SubmissionStore(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresPool(t, ctx)
	defer cleanup()

	store := NewSubmissionStore(pool)

	sub := &models.Submission{
		FormType: models.FormTypeProposal,
		Name:     "Иван Петров",
		Email:    "ivan@example.com",
		Phone:    "+7 900 000-00-00",
		City:     "Казань",
		Status:   models.SubmissionStatusNew,
		Metadata: map[string]any{"source": "integration"},
	}
	require.NoError(t, store.Create(ctx, sub))

	count, err := store.CountNew(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, store.UpdateStatus(ctx, sub.ID, models.SubmissionStatusDone))

	got, err := store.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusDone, got.Status)
	require.Equal(t, "integration", got.Metadata["source"])

	items, total, err := store.List(ctx, models.SubmissionFilter{Search: "Петров", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, sub.ID, items[0].ID)
}
