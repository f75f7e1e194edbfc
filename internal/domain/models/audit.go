package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/openjwks/jwksd/pkg/constants"
)

// AuditEvent represents a single key lifecycle audit trail entry.
type AuditEvent struct {
	EventID   string                   `json:"event_id"`
	EventType constants.AuditEventType `json:"event_type"`
	KeyID     string                   `json:"key_id"`
	Algorithm constants.Algorithm      `json:"algorithm,omitempty"`
	State     constants.KeyState       `json:"state,omitempty"`
	Actor     string                   `json:"actor"`
	Timestamp time.Time                `json:"timestamp"`
}

// NewAuditEvent creates an audit event for a key, stamped with the current time.
func NewAuditEvent(eventType constants.AuditEventType, key *KeyRecord, actor string, now time.Time) AuditEvent {
	return AuditEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		KeyID:     key.ID,
		Algorithm: key.Algorithm,
		Actor:     actor,
		Timestamp: now,
	}
}
