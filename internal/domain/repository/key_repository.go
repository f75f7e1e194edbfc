// Package repository defines the persistence interfaces the domain depends on.
package repository

import (
	"context"
	"time"

	"github.com/openjwks/jwksd/internal/domain/models"
)

// KeyRepository is the store abstraction for key records. Implementations
// must provide strong read-after-write consistency for a single record.
//
// The two mutation methods are conditional updates: they apply only when the
// targeted field is still in its prior state, and report whether the update
// was applied. A false return with a nil error means another actor already
// performed the transition, which callers treat as success.
type KeyRepository interface {
	// Create persists a freshly minted key record.
	Create(ctx context.Context, key *models.KeyRecord) error

	// GetByID fetches a single record, including soft-deleted ones.
	GetByID(ctx context.Context, id string) (*models.KeyRecord, error)

	// ListNotDeleted returns all records without DeletedAt set, ordered by
	// CreatedAt ascending.
	ListNotDeleted(ctx context.Context) ([]models.KeyRecord, error)

	// ListAll returns every record, deleted ones included, ordered by
	// CreatedAt ascending.
	ListAll(ctx context.Context) ([]models.KeyRecord, error)

	// PurgePrivateKey clears the private material of a record, conditional
	// on the material still being present.
	PurgePrivateKey(ctx context.Context, id string) (applied bool, err error)

	// MarkDeleted sets DeletedAt, conditional on it being unset.
	MarkDeleted(ctx context.Context, id string, at time.Time) (applied bool, err error)
}
