// request_repository.go implements RequestRepository, providing database queries for
// the per-venue song request queue: listing, soft-delete consumption, and insertion.
package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

// RequestRepository handles song request database operations
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// ListUnprocessed retrieves a venue's open requests, oldest first.
func (r *RequestRepository) ListUnprocessed(ctx context.Context, venueID int64) ([]models.Request, error) {
	query := `
		SELECT id, venue_id, artist, title, singer, key_change, processed, request_time
		FROM requests
		WHERE venue_id = $1 AND processed = FALSE
		ORDER BY request_time, id
	`

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, venueID); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	return requests, nil
}

// MarkProcessed soft-deletes one request. The processed = FALSE condition makes
// consumption at-most-once: when two devices race for the same request, exactly
// one update matches a row and the other observes zero rows affected.
func (r *RequestRepository) MarkProcessed(ctx context.Context, venueID, requestID int64) (bool, error) {
	query := `
		UPDATE requests
		SET processed = TRUE
		WHERE id = $1 AND venue_id = $2 AND processed = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, requestID, venueID)
	if err != nil {
		return false, fmt.Errorf("failed to mark request processed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return rows > 0, nil
}

// ClearUnprocessed soft-deletes every open request for a venue and returns how
// many rows were marked.
func (r *RequestRepository) ClearUnprocessed(ctx context.Context, venueID int64) (int64, error) {
	query := `
		UPDATE requests
		SET processed = TRUE
		WHERE venue_id = $1 AND processed = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, venueID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear requests: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return rows, nil
}

// Create inserts a new unprocessed request. The public submission surface is
// the normal producer; this is also used by tooling and tests.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	query := `
		INSERT INTO requests (venue_id, artist, title, singer, key_change)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, request_time
	`

	err := r.db.QueryRowContext(ctx, query,
		req.VenueID, req.Artist, req.Title, req.Singer, req.KeyChange,
	).Scan(&req.ID, &req.RequestTime)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}
