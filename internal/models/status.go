// internal/models/status.go
package models

import (
	"strings"
	"time"
)

// PersistedStatus is a lifecycle status owned by the backend.
type PersistedStatus string

const (
	StatusPending   PersistedStatus = "pending"
	StatusApproved  PersistedStatus = "approved"
	StatusDeclined  PersistedStatus = "declined"
	StatusCancelled PersistedStatus = "cancelled"
)

// DerivedStatus is a display-only status computed at evaluation time. It is
// never persisted or cached; see RequestRow.EffectiveStatus.
type DerivedStatus string

const DerivedExpired DerivedStatus = "expired"

// ParseStatus normalizes a raw status value. Unknown or missing input maps
// to pending, mirroring how freshly submitted records arrive.
func ParseStatus(raw interface{}) PersistedStatus {
	s, _ := raw.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve", "accepted":
		return StatusApproved
	case "declined", "decline", "rejected":
		return StatusDeclined
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusPending
	}
}

// StatusClock abstracts "now" so derived statuses are testable.
type StatusClock func() time.Time
