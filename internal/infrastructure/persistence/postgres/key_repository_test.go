package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/repository"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
)

func newTestRepository(t *testing.T) repository.KeyRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewKeyRepository(db)
}

func storedKey(id string, created time.Time) *models.KeyRecord {
	priv := "cGtjczgtZGVy"
	n := "bW9kdWx1cw"
	e := "AQAB"
	return &models.KeyRecord{
		ID:                  id,
		Algorithm:           constants.AlgorithmRS256,
		Kty:                 "RSA",
		N:                   &n,
		E:                   &e,
		PrivateKey:          &priv,
		CreatedAt:           created,
		PrivateKeyExpiresAt: created.Add(time.Hour),
		KeyExpiresAt:        created.Add(2 * time.Hour),
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	key := storedKey("k1", t0)
	require.NoError(t, repo.Create(ctx, key))

	got, err := repo.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)
	assert.Equal(t, key.Algorithm, got.Algorithm)
	require.NotNil(t, got.PrivateKey)
	assert.Equal(t, *key.PrivateKey, *got.PrivateKey)
	assert.True(t, got.CreatedAt.Equal(t0))
}

func TestGetByIDUnknown(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetByIDReturnsDeletedRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, storedKey("k1", t0)))
	applied, err := repo.MarkDeleted(ctx, "k1", t0.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, applied)

	got, err := repo.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
}

func TestListOrdering(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of creation order; listings must come back oldest first.
	for _, i := range []int{2, 0, 1} {
		key := storedKey(fmt.Sprintf("k%d", i), t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, key))
	}

	keys, err := repo.ListNotDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "k0", keys[0].ID)
	assert.Equal(t, "k1", keys[1].ID)
	assert.Equal(t, "k2", keys[2].ID)
}

func TestListNotDeletedExcludesDeleted(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, storedKey("k1", t0)))
	require.NoError(t, repo.Create(ctx, storedKey("k2", t0.Add(time.Minute))))

	_, err := repo.MarkDeleted(ctx, "k1", t0.Add(time.Hour))
	require.NoError(t, err)

	live, err := repo.ListNotDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "k2", live[0].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPurgePrivateKeyAppliesOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, storedKey("k1", t0)))

	applied, err := repo.PurgePrivateKey(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, got.HasPrivateKey())
	assert.NotNil(t, got.N, "public material survives the purge")

	// The repeat hits zero rows: no error, not applied.
	applied, err = repo.PurgePrivateKey(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPurgePrivateKeyUnknownID(t *testing.T) {
	repo := newTestRepository(t)

	applied, err := repo.PurgePrivateKey(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestMarkDeletedAppliesOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, storedKey("k1", t0)))

	applied, err := repo.MarkDeleted(ctx, "k1", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.MarkDeleted(ctx, "k1", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, got.DeletedAt.Equal(t0.Add(time.Minute)), "first delete timestamp wins")
}
