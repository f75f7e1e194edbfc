package audit

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjwks/jwksd/internal/config"
	"github.com/openjwks/jwksd/pkg/logger"
)

func TestKafkaProducerPartitionsByMessageKey(t *testing.T) {
	p := NewKafkaProducer(config.AuditConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "jwksd.audit",
		WriteTimeout: time.Second,
		BatchTimeout: time.Second,
	}, logger.NewNoopLogger())

	balancer := p.writer.Balancer
	require.IsType(t, &kafka.Hash{}, balancer)

	// Events for the same key id always land on the same partition, so they
	// stay ordered relative to each other.
	partitions := []int{0, 1, 2, 3}
	msg := kafka.Message{Key: []byte("4f9c1f2e-1d1c-4b86-9f2d-0f1f4a3f9a01")}
	first := balancer.Balance(msg, partitions...)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, balancer.Balance(msg, partitions...))
	}
}
