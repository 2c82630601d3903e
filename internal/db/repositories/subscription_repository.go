// subscription_repository.go implements SubscriptionRepository, a read-only view
// over the billing-provider subscription mirror. It answers one question: does
// the tenant currently hold an active or trialing entitlement.
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SubscriptionRepository handles entitlement lookups against the subscription mirror
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// HasActiveEntitlement reports whether the tenant holds at least one
// active-or-trialing subscription.
func (r *SubscriptionRepository) HasActiveEntitlement(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE tenant_id = $1 AND status IN ('active', 'trialing')
		)
	`

	var entitled bool
	if err := r.db.GetContext(ctx, &entitled, query, tenantID); err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}

	return entitled, nil
}
