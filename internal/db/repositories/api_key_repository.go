// api_key_repository.go implements APIKeyRepository, providing database queries for
// device credential lookup by prefix, creation, status transitions, and last-used
// timestamp updates.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

// APIKeyRepository handles API key database operations
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a new API key. Only the bcrypt hash and display prefix are
// persisted; the raw key is shown once by the caller and never stored.
func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	key.ID = uuid.New()
	key.CreatedAt = time.Now()

	query := `
		INSERT INTO api_keys (id, tenant_id, key_hash, key_prefix, status, description, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.TenantID,
		key.KeyHash,
		key.KeyPrefix,
		key.Status,
		key.Description,
		key.LastUsedAt,
		key.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// ListByPrefix retrieves the candidate credentials matching a display prefix.
// There is no by-plaintext lookup: the stored form is a salted one-way hash, so
// the caller narrows by prefix and then runs the bcrypt comparison per candidate.
func (r *APIKeyRepository) ListByPrefix(ctx context.Context, keyPrefix string) ([]models.APIKey, error) {
	query := `
		SELECT id, tenant_id, key_hash, key_prefix, status, description, last_used_at, created_at
		FROM api_keys
		WHERE key_prefix = $1
		ORDER BY created_at DESC
	`

	var keys []models.APIKey
	if err := r.db.SelectContext(ctx, &keys, query, keyPrefix); err != nil {
		return nil, fmt.Errorf("failed to list api keys by prefix: %w", err)
	}

	return keys, nil
}

// ListByTenant retrieves all API keys for a tenant (dashboard listing).
func (r *APIKeyRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.APIKey, error) {
	query := `
		SELECT id, tenant_id, key_hash, key_prefix, status, description, last_used_at, created_at
		FROM api_keys
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`

	var keys []models.APIKey
	if err := r.db.SelectContext(ctx, &keys, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list api keys by tenant: %w", err)
	}

	return keys, nil
}

// UpdateLastUsed updates the last_used_at timestamp for an API key
func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, keyID uuid.UUID) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, keyID, time.Now()); err != nil {
		return fmt.Errorf("failed to update api key last used: %w", err)
	}
	return nil
}

// UpdateStatus transitions a key between active/suspended/revoked.
func (r *APIKeyRepository) UpdateStatus(ctx context.Context, keyID uuid.UUID, status string) error {
	query := `UPDATE api_keys SET status = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, keyID, status); err != nil {
		return fmt.Errorf("failed to update api key status: %w", err)
	}
	return nil
}
