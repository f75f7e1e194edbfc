package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/repository"
	"github.com/openjwks/jwksd/pkg/errors"
)

// KeyRepository is the GORM implementation of repository.KeyRepository.
//
// The two lifecycle mutations are expressed as conditional updates: the WHERE
// clause pins the prior state of the mutated column, so a racing duplicate
// application affects zero rows and is reported as "not applied" rather than
// failing. This is the whole concurrency discipline the sweeper and the API
// layer rely on.
type KeyRepository struct {
	db *gorm.DB
}

// NewKeyRepository creates a KeyRepository over an open GORM handle.
func NewKeyRepository(db *gorm.DB) repository.KeyRepository {
	return &KeyRepository{db: db}
}

// Create persists a freshly minted key record.
func (r *KeyRepository) Create(ctx context.Context, key *models.KeyRecord) error {
	if err := r.db.WithContext(ctx).Create(key).Error; err != nil {
		return errors.ErrPersistence("create", err)
	}
	return nil
}

// GetByID fetches a single record by primary key, soft-deleted ones included.
func (r *KeyRepository) GetByID(ctx context.Context, id string) (*models.KeyRecord, error) {
	var key models.KeyRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrKeyNotFound(id)
		}
		return nil, errors.ErrPersistence("get", err)
	}
	return &key, nil
}

// ListNotDeleted returns all records without DeletedAt set, oldest first.
func (r *KeyRepository) ListNotDeleted(ctx context.Context) ([]models.KeyRecord, error) {
	var keys []models.KeyRecord
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Find(&keys).Error
	if err != nil {
		return nil, errors.ErrPersistence("list", err)
	}
	return keys, nil
}

// ListAll returns every record, deleted ones included, oldest first.
func (r *KeyRepository) ListAll(ctx context.Context) ([]models.KeyRecord, error) {
	var keys []models.KeyRecord
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&keys).Error
	if err != nil {
		return nil, errors.ErrPersistence("list", err)
	}
	return keys, nil
}

// PurgePrivateKey clears the record's private material, conditional on the
// material still being present. Returns false when another actor already
// purged it.
func (r *KeyRepository) PurgePrivateKey(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.KeyRecord{}).
		Where("id = ? AND private_key IS NOT NULL", id).
		Update("private_key", nil)
	if res.Error != nil {
		return false, errors.ErrPersistence("purge_private_key", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkDeleted sets DeletedAt, conditional on it being unset. Returns false
// when the record was already soft-deleted.
func (r *KeyRepository) MarkDeleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.KeyRecord{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return false, errors.ErrPersistence("mark_deleted", res.Error)
	}
	return res.RowsAffected > 0, nil
}
