package audit

import (
	"context"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/logger"
)

var _ service.AuditService = (*LogSink)(nil)

// LogSink writes audit events to the structured log. Used when no Kafka
// brokers are configured.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a log-backed audit sink.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log.WithComponent("audit")}
}

// LogEvent records the event as a structured log entry.
func (s *LogSink) LogEvent(ctx context.Context, event models.AuditEvent) {
	s.logger.Info(ctx, "audit event",
		logger.String("event_id", event.EventID),
		logger.String("event_type", string(event.EventType)),
		logger.String("key_id", event.KeyID),
		logger.String("algorithm", string(event.Algorithm)),
		logger.String("actor", event.Actor),
		logger.Time("timestamp", event.Timestamp),
	)
}

// Close is a no-op for the log sink.
func (s *LogSink) Close() error {
	return nil
}
