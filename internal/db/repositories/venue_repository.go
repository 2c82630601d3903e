// venue_repository.go implements VenueRepository, providing database queries for
// venue listing and the accepting-flag toggle used by the sync protocol.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

// VenueRepository handles venue database operations
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository creates a new VenueRepository
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// ListByTenant retrieves all venues owned by a tenant, ordered by creation.
func (r *VenueRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Venue, error) {
	query := `
		SELECT id, tenant_id, name, url_name, accepting, system_id, created_at, updated_at
		FROM venues
		WHERE tenant_id = $1
		ORDER BY id
	`

	var venues []models.Venue
	if err := r.db.SelectContext(ctx, &venues, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	return venues, nil
}

// GetByID retrieves one venue, scoped to the owning tenant so a device can
// never address another tenant's venue. Returns nil when no row matches.
func (r *VenueRepository) GetByID(ctx context.Context, tenantID uuid.UUID, venueID int64) (*models.Venue, error) {
	query := `
		SELECT id, tenant_id, name, url_name, accepting, system_id, created_at, updated_at
		FROM venues
		WHERE id = $1 AND tenant_id = $2
	`

	var venue models.Venue
	err := r.db.GetContext(ctx, &venue, query, venueID, tenantID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return &venue, nil
}

// SetAccepting updates a venue's accepting flag and current system. The update
// is tenant-scoped; it reports false when the venue does not belong to the
// tenant (or does not exist) so the caller can answer venue-not-found.
func (r *VenueRepository) SetAccepting(ctx context.Context, tenantID uuid.UUID, venueID, systemID int64, accepting bool) (bool, error) {
	query := `
		UPDATE venues
		SET accepting = $3, system_id = $4, updated_at = $5
		WHERE id = $1 AND tenant_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, venueID, tenantID, accepting, systemID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to set venue accepting: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return rows > 0, nil
}
