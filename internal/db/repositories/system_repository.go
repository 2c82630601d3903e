// system_repository.go implements SystemRepository for the per-tenant device
// installation identifiers.
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

// SystemRepository handles system database operations
type SystemRepository struct {
	db *sqlx.DB
}

// NewSystemRepository creates a new SystemRepository
func NewSystemRepository(db *sqlx.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

// ListByTenant retrieves a tenant's systems ordered by device-facing id.
func (r *SystemRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.System, error) {
	query := `
		SELECT tenant_id, system_id, name, created_at
		FROM systems
		WHERE tenant_id = $1
		ORDER BY system_id
	`

	var systems []models.System
	if err := r.db.SelectContext(ctx, &systems, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}

	return systems, nil
}

// CountByTenant returns how many systems the tenant has registered.
func (r *SystemRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM systems WHERE tenant_id = $1`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count systems: %w", err)
	}

	return count, nil
}

// Ensure creates the system row if it does not exist yet. Devices may reference
// a system implicitly (system 0 as the default) before it was ever registered
// from the dashboard.
func (r *SystemRepository) Ensure(ctx context.Context, tenantID uuid.UUID, systemID int64) error {
	query := `
		INSERT INTO systems (tenant_id, system_id)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id, system_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, tenantID, systemID); err != nil {
		return fmt.Errorf("failed to ensure system: %w", err)
	}

	return nil
}
