// Package application orchestrates the key lifecycle use cases on top of the
// domain services and the infrastructure adapters.
package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/repository"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/internal/infrastructure/crypto"
	"github.com/openjwks/jwksd/internal/infrastructure/monitoring"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

// KeyGenerator produces key material for a supported algorithm.
type KeyGenerator interface {
	Generate(alg constants.Algorithm) (*models.KeyMaterial, error)
}

// KeyView is the list representation of a key record: identity, lifecycle
// timestamps and the derived state, never any key material.
type KeyView struct {
	ID                  string              `json:"id"`
	Algorithm           constants.Algorithm `json:"alg"`
	Kty                 string              `json:"kty"`
	State               constants.KeyState  `json:"state"`
	CreatedAt           time.Time           `json:"created_at"`
	PrivateKeyExpiresAt time.Time           `json:"private_key_expires_at"`
	KeyExpiresAt        time.Time           `json:"key_expires_at"`
	DeletedAt           *time.Time          `json:"deleted_at,omitempty"`
}

// KeyServiceConfig carries the lifecycle parameters injected at construction.
// TTLs are fixed per service instance; records mint their expiry timestamps
// from these at creation and never re-read configuration afterwards.
type KeyServiceConfig struct {
	PrivateKeyTTL time.Duration
	KeyTTL        time.Duration
}

// KeyService implements the external key operations: creation, retrieval,
// soft deletion, listing, and publication of the JWK set.
type KeyService struct {
	repo      repository.KeyRepository
	generator KeyGenerator
	lifecycle *service.LifecycleManager
	clock     service.Clock
	audit     service.AuditService
	cache     service.JwksCache
	metrics   *monitoring.Metrics
	logger    logger.Logger
	cfg       KeyServiceConfig
}

// NewKeyService creates a KeyService. metrics may be nil, in which case no
// metrics are recorded.
func NewKeyService(
	repo repository.KeyRepository,
	generator KeyGenerator,
	lifecycle *service.LifecycleManager,
	clock service.Clock,
	audit service.AuditService,
	cache service.JwksCache,
	metrics *monitoring.Metrics,
	log logger.Logger,
	cfg KeyServiceConfig,
) *KeyService {
	return &KeyService{
		repo:      repo,
		generator: generator,
		lifecycle: lifecycle,
		clock:     clock,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		logger:    log.WithComponent("key_service"),
		cfg:       cfg,
	}
}

// CreateKey generates a key pair for the requested algorithm, persists the
// record and returns it. The returned record includes the private material:
// creation is the only operation that hands it out while the key is active.
func (s *KeyService) CreateKey(ctx context.Context, alg constants.Algorithm) (*models.KeyRecord, error) {
	if _, ok := alg.Family(); !ok {
		return nil, errors.ErrUnsupportedAlgorithm(string(alg))
	}

	start := s.clock.Now()
	material, err := s.generator.Generate(alg)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	key := models.NewKeyRecord(uuid.NewString(), material, now, s.cfg.PrivateKeyTTL, s.cfg.KeyTTL)

	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordKeyCreated(string(alg), now.Sub(start))
	}
	s.audit.LogEvent(ctx, models.NewAuditEvent(constants.AuditEventKeyCreated, key, "api", now))
	s.cache.Invalidate(ctx)

	s.logger.Info(ctx, "key created",
		logger.String("key_id", key.ID),
		logger.String("alg", string(alg)),
		logger.Time("private_key_expires_at", key.PrivateKeyExpiresAt),
		logger.Time("key_expires_at", key.KeyExpiresAt),
	)
	return key, nil
}

// GetKey fetches a single record with its private material. Deleted, fully
// expired, and unknown keys are all reported not found; a key whose private
// material has expired or been purged while the public part is still
// published is reported gone rather than returned partially.
func (s *KeyService) GetKey(ctx context.Context, id string) (*models.KeyRecord, error) {
	key, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key.IsDeleted() {
		return nil, errors.ErrKeyNotFound(id)
	}

	state := s.lifecycle.StateAt(key, s.clock.Now())
	if state == constants.KeyStateExpired {
		return nil, errors.ErrKeyNotFound(id)
	}
	if state != constants.KeyStateActive || !key.HasPrivateKey() {
		return nil, errors.ErrKeyGone(id)
	}
	return key, nil
}

// SoftDeleteKey marks a key deleted. Deleting an unknown id is not found;
// deleting an already deleted key reports already_deleted so callers can
// distinguish the repeat from the first delete.
func (s *KeyService) SoftDeleteKey(ctx context.Context, id string) error {
	key, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if key.IsDeleted() {
		return errors.ErrAlreadyDeleted(id)
	}

	now := s.clock.Now()
	applied, err := s.repo.MarkDeleted(ctx, id, now)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the race against another delete or the sweeper.
		return errors.ErrAlreadyDeleted(id)
	}

	if s.metrics != nil {
		s.metrics.RecordKeyDeleted()
	}
	s.audit.LogEvent(ctx, models.NewAuditEvent(constants.AuditEventKeyDeleted, key, "api", now))
	s.cache.Invalidate(ctx)

	s.logger.Info(ctx, "key soft deleted", logger.String("key_id", id))
	return nil
}

// ListKeys returns views of the stored records with their derived state,
// ordered by creation time. Deleted records are included only on request.
func (s *KeyService) ListKeys(ctx context.Context, includeDeleted bool) ([]KeyView, error) {
	var (
		keys []models.KeyRecord
		err  error
	)
	if includeDeleted {
		keys, err = s.repo.ListAll(ctx)
	} else {
		keys, err = s.repo.ListNotDeleted(ctx)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]KeyView, 0, len(keys))
	for i := range keys {
		key := &keys[i]
		views = append(views, KeyView{
			ID:                  key.ID,
			Algorithm:           key.Algorithm,
			Kty:                 key.Kty,
			State:               s.lifecycle.StateAt(key, now),
			CreatedAt:           key.CreatedAt,
			PrivateKeyExpiresAt: key.PrivateKeyExpiresAt,
			KeyExpiresAt:        key.KeyExpiresAt,
			DeletedAt:           key.DeletedAt,
		})
	}
	return views, nil
}

// GetPublishedSet returns the marshaled published JWK set. Active and
// private-expired keys are published in creation order; the document is
// served from cache between mutations.
func (s *KeyService) GetPublishedSet(ctx context.Context) ([]byte, error) {
	if doc, ok := s.cache.Get(ctx); ok {
		if s.metrics != nil {
			s.metrics.RecordCacheLookup("hit")
		}
		return doc, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup("miss")
	}

	keys, err := s.repo.ListNotDeleted(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	set := models.Jwks{Keys: []models.Jwk{}}
	for i := range keys {
		key := &keys[i]
		if !s.lifecycle.Published(s.lifecycle.StateAt(key, now)) {
			continue
		}
		jwk, err := crypto.EncodePublic(key)
		if err != nil {
			return nil, err
		}
		set.Keys = append(set.Keys, jwk)
	}

	doc, err := json.Marshal(set)
	if err != nil {
		return nil, errors.ErrInternal("failed to marshal published set").WithCause(err)
	}

	if s.metrics != nil {
		s.metrics.SetPublishedKeys(len(set.Keys))
	}
	s.cache.Set(ctx, doc)
	return doc, nil
}
