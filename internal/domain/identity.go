package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity é uma pessoa cadastrada com embedding de referência
type Identity struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	Embedding  []float64 `json:"-"`
	Image      []byte    `json:"-"`
	Deleted    bool      `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttendanceEvent is one deduplicated arrival record for an identity.
// Append-mostly: departure_time is the only field updated after creation.
type AttendanceEvent struct {
	ID            uuid.UUID  `json:"id"`
	IdentityID    uuid.UUID  `json:"identity_id"`
	Name          string     `json:"name"`
	Identifier    string     `json:"identifier"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	Auto          bool       `json:"auto"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UnknownSighting is an unmatched detection kept for later identification.
// It lives until migrated into an Identity or explicitly discarded.
type UnknownSighting struct {
	ID         uuid.UUID `json:"id"`
	Embedding  []float64 `json:"-"`
	Image      []byte    `json:"-"`
	DetectedAt time.Time `json:"detected_at"`
}

// MigrationTarget selects where a sighting goes during migration: either a
// brand new identity (Name+Identifier set) or an existing one (IdentityID).
type MigrationTarget struct {
	IdentityID *uuid.UUID `json:"identity_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Identifier string     `json:"identifier,omitempty"`
}

// IsNew reports whether the target describes a fresh enrollment.
func (t MigrationTarget) IsNew() bool {
	return t.IdentityID == nil
}
