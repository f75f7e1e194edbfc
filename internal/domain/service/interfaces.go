package service

import (
	"context"
	"time"

	"github.com/openjwks/jwksd/internal/domain/models"
)

// Clock is an injectable source of current time, so that lifecycle decisions
// are deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock returns a Clock backed by the system time, in UTC.
func NewRealClock() Clock {
	return realClock{}
}

// AuditService records key lifecycle events to an audit sink. Implementations
// must never fail the calling operation: audit delivery errors are logged and
// swallowed at the sink.
type AuditService interface {
	LogEvent(ctx context.Context, event models.AuditEvent)

	// Close flushes and releases the underlying sink.
	Close() error
}

// JwksCache caches the marshaled published key set between mutations. The
// published document changes only when a key is created, purged, deleted or
// swept, so the cache is invalidated on each of those and otherwise serves
// the hot read path of /.well-known/jwks.json.
type JwksCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, doc []byte)
	Invalidate(ctx context.Context)
}
