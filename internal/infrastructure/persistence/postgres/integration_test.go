package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/openjwks/jwksd/internal/config"
	"github.com/openjwks/jwksd/pkg/logger"
)

// TestPostgresRepository runs the repository against a real PostgreSQL
// instance. It needs Docker and is opt-in: set JWKSD_PG_INTEGRATION=1.
func TestPostgresRepository(t *testing.T) {
	if os.Getenv("JWKSD_PG_INTEGRATION") != "1" {
		t.Skip("set JWKSD_PG_INTEGRATION=1 to run the postgres integration test")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("jwksd"),
		tcpostgres.WithUsername("jwksd"),
		tcpostgres.WithPassword("jwksd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "jwksd",
		Password: "jwksd",
		Database: "jwksd",
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	db, err := NewDBConnection(ctx, cfg, logger.NewNoopLogger())
	require.NoError(t, err)

	repo := NewKeyRepository(db)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	key := storedKey("pg-k1", t0)
	require.NoError(t, repo.Create(ctx, key))

	got, err := repo.GetByID(ctx, "pg-k1")
	require.NoError(t, err)
	assert.True(t, got.HasPrivateKey())

	// Conditional updates behave the same on the real backend.
	applied, err := repo.PurgePrivateKey(ctx, "pg-k1")
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = repo.PurgePrivateKey(ctx, "pg-k1")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.MarkDeleted(ctx, "pg-k1", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = repo.MarkDeleted(ctx, "pg-k1", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, applied)

	live, err := repo.ListNotDeleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, live)
}
