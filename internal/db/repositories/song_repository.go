// song_repository.go implements SongRepository, providing bulk catalog upload with
// de-duplication and the per-system catalog wipe.
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

// SongRepository handles song catalog database operations
type SongRepository struct {
	db *sqlx.DB
}

// NewSongRepository creates a new SongRepository
func NewSongRepository(db *sqlx.DB) *SongRepository {
	return &SongRepository{db: db}
}

// BulkInsert inserts catalog entries for one tenant x system, silently dropping
// rows whose combo key already exists. Returns the number of rows actually
// inserted. The whole batch runs in one transaction so a mid-batch failure
// never leaves a partial upload behind.
func (r *SongRepository) BulkInsert(ctx context.Context, songs []models.Song) (int64, error) {
	if len(songs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO songs (tenant_id, system_id, artist, title, combo_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, system_id, combo_key) DO NOTHING
	`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare song insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, song := range songs {
		res, err := stmt.ExecContext(ctx, song.TenantID, song.SystemID, song.Artist, song.Title, song.ComboKey)
		if err != nil {
			return 0, fmt.Errorf("failed to insert song: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted += rows
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit song batch: %w", err)
	}

	return inserted, nil
}

// DeleteBySystem removes every catalog entry for a tenant x system pair and
// returns how many rows were deleted.
func (r *SongRepository) DeleteBySystem(ctx context.Context, tenantID uuid.UUID, systemID int64) (int64, error) {
	query := `DELETE FROM songs WHERE tenant_id = $1 AND system_id = $2`

	res, err := r.db.ExecContext(ctx, query, tenantID, systemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete songs: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return rows, nil
}

// CountBySystem returns the catalog size for a tenant x system pair.
func (r *SongRepository) CountBySystem(ctx context.Context, tenantID uuid.UUID, systemID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM songs WHERE tenant_id = $1 AND system_id = $2`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, tenantID, systemID); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}

	return count, nil
}
