// serial_repository.go implements SerialRepository, the per-tenant monotonic
// change counter devices use for cheap poll-and-compare change detection.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SerialRepository handles serial counter database operations
type SerialRepository struct {
	db *sqlx.DB
}

// NewSerialRepository creates a new SerialRepository
func NewSerialRepository(db *sqlx.DB) *SerialRepository {
	return &SerialRepository{db: db}
}

// Current returns the tenant's serial without mutating it. A tenant with no
// row yet reads as 1, the value a fresh row would carry.
func (r *SerialRepository) Current(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `SELECT serial FROM serials WHERE tenant_id = $1`

	var serial int64
	err := r.db.GetContext(ctx, &serial, query, tenantID)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get serial: %w", err)
	}

	return serial, nil
}

// Bump atomically increments the tenant's serial and returns the new value.
// The whole operation is a single upsert-with-increment statement so two
// concurrent mutating commands can never under-count: there is no
// read-modify-write window at the application level.
//
// A missing row reads as serial 1 (see Current), so the insert arm starts the
// row at 2 — the first bump must advance past the implicit initial value.
func (r *SerialRepository) Bump(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `
		INSERT INTO serials (tenant_id, serial, updated_at)
		VALUES ($1, 2, NOW())
		ON CONFLICT (tenant_id)
		DO UPDATE SET serial = serials.serial + 1, updated_at = NOW()
		RETURNING serial
	`

	var serial int64
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&serial); err != nil {
		return 0, fmt.Errorf("failed to bump serial: %w", err)
	}

	return serial, nil
}
