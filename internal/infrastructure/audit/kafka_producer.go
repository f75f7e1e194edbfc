// Package audit implements the audit trail sinks for key lifecycle events.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/openjwks/jwksd/internal/config"
	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/logger"
)

var _ service.AuditService = (*KafkaProducer)(nil)

// KafkaProducer delivers audit events to a Kafka topic. Delivery failures are
// logged and dropped: the audit trail never fails a key operation.
type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaProducer creates a Kafka-backed audit sink.
func NewKafkaProducer(cfg config.AuditConfig, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaProducer{
		writer: writer,
		logger: log.WithComponent("audit_kafka"),
	}
}

// LogEvent publishes the event keyed by key id, so events for the same key
// land on the same partition in order.
func (p *KafkaProducer) LogEvent(ctx context.Context, event models.AuditEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal audit event", err,
			logger.String("event_type", string(event.EventType)))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.KeyID),
		Value: payload,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to publish audit event", err,
			logger.String("event_type", string(event.EventType)),
			logger.String("key_id", event.KeyID))
	}
}

// Close flushes and closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
