// Package service contains the domain services: the key lifecycle state
// machine and the small abstractions (clock, audit, cache) the application
// layer is wired with.
package service

import (
	"time"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/pkg/constants"
)

// LifecycleManager computes the derived state of a key record from its
// timestamps and a point in time. It is pure: the same record and instant
// always yield the same state, and states only ever advance in the order
// active -> private_expired -> expired, with deleted terminal from any state.
type LifecycleManager struct{}

// NewLifecycleManager creates a LifecycleManager.
func NewLifecycleManager() *LifecycleManager {
	return &LifecycleManager{}
}

// StateAt returns the lifecycle state of the record at the given instant.
// Boundaries are inclusive on the expiry side: a key is private-expired the
// moment now equals PrivateKeyExpiresAt, and expired the moment now equals
// KeyExpiresAt.
func (m *LifecycleManager) StateAt(key *models.KeyRecord, now time.Time) constants.KeyState {
	if key.IsDeleted() {
		return constants.KeyStateDeleted
	}
	if !now.Before(key.KeyExpiresAt) {
		return constants.KeyStateExpired
	}
	if !now.Before(key.PrivateKeyExpiresAt) {
		return constants.KeyStatePrivateExpired
	}
	return constants.KeyStateActive
}

// Published reports whether a key in the given state belongs in the
// published JWK set. Only active and private-expired keys are published:
// private-expired keys keep in-flight tokens verifiable.
func (m *LifecycleManager) Published(state constants.KeyState) bool {
	return state == constants.KeyStateActive || state == constants.KeyStatePrivateExpired
}

// NeedsPrivatePurge reports whether the sweeper should clear the record's
// private material at the given instant.
func (m *LifecycleManager) NeedsPrivatePurge(key *models.KeyRecord, now time.Time) bool {
	state := m.StateAt(key, now)
	return (state == constants.KeyStatePrivateExpired || state == constants.KeyStateExpired) &&
		key.HasPrivateKey()
}

// EligibleForAutoDelete reports whether the sweeper may soft-delete the
// record under the auto-delete policy at the given instant.
func (m *LifecycleManager) EligibleForAutoDelete(key *models.KeyRecord, now time.Time) bool {
	return m.StateAt(key, now) == constants.KeyStateExpired
}
