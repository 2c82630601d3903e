package models

import (
	"time"

	"github.com/google/uuid"
)

// API key lifecycle statuses. Revocation is terminal; suspension is
// semi-terminal (an operator can re-activate from the dashboard). Both are
// enforced at authentication time.
const (
	APIKeyStatusActive    = "active"
	APIKeyStatusSuspended = "suspended"
	APIKeyStatusRevoked   = "revoked"
)

// APIKey is a hashed device credential belonging to a tenant.
type APIKey struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	KeyHash     string     `json:"-" db:"key_hash"`
	KeyPrefix   string     `json:"key_prefix" db:"key_prefix"`
	Status      string     `json:"status" db:"status"`
	Description string     `json:"description" db:"description"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
