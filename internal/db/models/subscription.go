package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription mirrors one billing-provider subscription object. The mirror is
// maintained by the out-of-tree webhook transcriber; this service only reads
// the status to answer entitlement checks.
type Subscription struct {
	ID               string     `json:"id" db:"id"`
	TenantID         uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Status           string     `json:"status" db:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty" db:"current_period_end"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Entitled reports whether the subscription status grants access.
// Mirrors the billing provider's vocabulary: "active" and "trialing" count.
func (s *Subscription) Entitled() bool {
	return s.Status == "active" || s.Status == "trialing"
}
