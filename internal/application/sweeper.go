package application

import (
	"context"
	"time"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/repository"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/internal/infrastructure/monitoring"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/logger"
)

// SweeperConfig carries the sweep policy.
type SweeperConfig struct {
	Interval time.Duration

	// AutoDeleteOnFullExpiry soft-deletes keys that have passed their full
	// TTL. Off by default: expired keys then stay until explicitly deleted.
	AutoDeleteOnFullExpiry bool
}

// Sweeper advances stored records whose lifecycle deadlines have passed:
// purging private material past its TTL and, under the auto-delete policy,
// soft-deleting fully expired keys. All mutations are conditional updates,
// so concurrent sweepers converge on the same end state and a transition is
// applied exactly once no matter how many replicas run.
type Sweeper struct {
	repo      repository.KeyRepository
	lifecycle *service.LifecycleManager
	clock     service.Clock
	audit     service.AuditService
	cache     service.JwksCache
	metrics   *monitoring.Metrics
	logger    logger.Logger
	cfg       SweeperConfig
}

// NewSweeper creates a Sweeper. metrics may be nil.
func NewSweeper(
	repo repository.KeyRepository,
	lifecycle *service.LifecycleManager,
	clock service.Clock,
	audit service.AuditService,
	cache service.JwksCache,
	metrics *monitoring.Metrics,
	log logger.Logger,
	cfg SweeperConfig,
) *Sweeper {
	return &Sweeper{
		repo:      repo,
		lifecycle: lifecycle,
		clock:     clock,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		logger:    log.WithComponent("sweeper"),
		cfg:       cfg,
	}
}

// Run executes sweeps on the configured interval until the context is
// canceled. One sweep runs immediately at startup so a restarted instance
// catches up without waiting a full interval.
func (s *Sweeper) Run(ctx context.Context) error {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep over all live records. Per-key failures
// are logged and skipped; the sweep itself never fails, the next run retries
// whatever this one missed.
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := s.clock.Now()

	keys, err := s.repo.ListNotDeleted(ctx)
	if err != nil {
		s.logger.Error(ctx, "sweep aborted, list failed", err)
		if s.metrics != nil {
			s.metrics.RecordSweepRun("error")
		}
		return
	}

	var purged, deleted, failed int
	var expiredInWindow bool
	for i := range keys {
		key := &keys[i]

		// A record that crossed key_expires_at since the last sweep left the
		// published set without any row changing; the cached document has to
		// be dropped for it too.
		if !now.Before(key.KeyExpiresAt) && key.KeyExpiresAt.After(now.Add(-s.cfg.Interval)) {
			expiredInWindow = true
		}

		if s.lifecycle.NeedsPrivatePurge(key, now) {
			if s.purgePrivateKey(ctx, key, now) {
				purged++
			} else {
				failed++
			}
		}

		if s.cfg.AutoDeleteOnFullExpiry && s.lifecycle.EligibleForAutoDelete(key, now) {
			if s.autoDelete(ctx, key, now) {
				deleted++
			} else {
				failed++
			}
		}
	}

	if purged > 0 || deleted > 0 || expiredInWindow {
		s.cache.Invalidate(ctx)
	}
	if purged > 0 || deleted > 0 {
		s.logger.Info(ctx, "sweep applied transitions",
			logger.Int("purged", purged),
			logger.Int("deleted", deleted),
			logger.Int("scanned", len(keys)),
		)
	}
	if s.metrics != nil {
		result := "clean"
		if failed > 0 {
			result = "partial"
		}
		s.metrics.RecordSweepRun(result)
	}
}

// purgePrivateKey clears the record's private material. A conditional update
// that applies to no rows means another sweeper got there first, which counts
// as done.
func (s *Sweeper) purgePrivateKey(ctx context.Context, key *models.KeyRecord, now time.Time) bool {
	applied, err := s.repo.PurgePrivateKey(ctx, key.ID)
	if err != nil {
		s.logger.Error(ctx, "private key purge failed", err, logger.String("key_id", key.ID))
		return false
	}
	if !applied {
		return true
	}

	if s.metrics != nil {
		s.metrics.RecordSweepTransition("private_purged")
	}
	s.audit.LogEvent(ctx, models.NewAuditEvent(constants.AuditEventKeyPrivatePurged, key, "sweeper", now))
	s.logger.Info(ctx, "private key purged", logger.String("key_id", key.ID))
	return true
}

func (s *Sweeper) autoDelete(ctx context.Context, key *models.KeyRecord, now time.Time) bool {
	applied, err := s.repo.MarkDeleted(ctx, key.ID, now)
	if err != nil {
		s.logger.Error(ctx, "auto delete failed", err, logger.String("key_id", key.ID))
		return false
	}
	if !applied {
		return true
	}

	if s.metrics != nil {
		s.metrics.RecordSweepTransition("auto_deleted")
	}
	s.audit.LogEvent(ctx, models.NewAuditEvent(constants.AuditEventKeyAutoDeleted, key, "sweeper", now))
	s.logger.Info(ctx, "expired key auto deleted", logger.String("key_id", key.ID))
	return true
}
