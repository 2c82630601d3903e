// authenticator.go resolves a presented device secret to a tenant context.
//
// There is no by-plaintext credential lookup — the stored form is a salted
// one-way bcrypt hash. The non-secret display prefix stored alongside each hash
// narrows the candidate set to a few rows, then the presented key is verified
// against each candidate hash. Without the prefix index this would be O(all
// active keys) bcrypt comparisons per poll.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/songbird-live/songbird-backend/internal/auth"
	"github.com/songbird-live/songbird-backend/internal/db/models"
	"github.com/songbird-live/songbird-backend/internal/safego"
)

// CredentialStore enumerates stored credential hashes by display prefix and
// records credential usage. Implemented by repositories.APIKeyRepository.
type CredentialStore interface {
	ListByPrefix(ctx context.Context, keyPrefix string) ([]models.APIKey, error)
	UpdateLastUsed(ctx context.Context, keyID uuid.UUID) error
}

// EntitlementOracle answers whether a tenant currently holds a paid
// entitlement (active or trialing). Implemented by
// repositories.SubscriptionRepository over the billing mirror.
type EntitlementOracle interface {
	HasActiveEntitlement(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// VenueSource lists a tenant's venues. Implemented by repositories.VenueRepository.
type VenueSource interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Venue, error)
}

// SystemSource lists a tenant's systems. Implemented by repositories.SystemRepository.
type SystemSource interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.System, error)
}

// TenantContext is the authenticated identity a command executes under.
type TenantContext struct {
	TenantID uuid.UUID
	KeyID    uuid.UUID
	Venues   []models.Venue
	Systems  []models.System
	// Entitled is evaluated once at authentication time but only enforced by
	// state-mutating commands, so read-only polling keeps working during a
	// lapsed subscription.
	Entitled bool
}

// Venue returns the tenant's venue with the given device-facing id, or nil.
func (tc *TenantContext) Venue(venueID int64) *models.Venue {
	for i := range tc.Venues {
		if tc.Venues[i].ID == venueID {
			return &tc.Venues[i]
		}
	}
	return nil
}

// Authenticator resolves presented secrets to tenant contexts.
type Authenticator struct {
	credentials  CredentialStore
	entitlements EntitlementOracle
	venues       VenueSource
	systems      SystemSource
	supportURL   string
}

// NewAuthenticator creates an Authenticator. supportURL is embedded in
// user-facing remediation messages.
func NewAuthenticator(credentials CredentialStore, entitlements EntitlementOracle, venues VenueSource, systems SystemSource, supportURL string) *Authenticator {
	return &Authenticator{
		credentials:  credentials,
		entitlements: entitlements,
		venues:       venues,
		systems:      systems,
		supportURL:   supportURL,
	}
}

// Authenticate verifies a presented secret and returns the tenant context.
// Protocol failures (no match, suspended, revoked) come back as *CommandError;
// any other error is an internal failure the dispatcher maps to HTTP 500.
func (a *Authenticator) Authenticate(ctx context.Context, presentedKey string) (*TenantContext, error) {
	if presentedKey == "" {
		return nil, cmdErr(ErrInvalidAPIKey, "Invalid API key")
	}

	candidates, err := a.credentials.ListByPrefix(ctx, auth.KeyPrefix(presentedKey))
	if err != nil {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	var matched *models.APIKey
	for i := range candidates {
		if auth.ValidateAPIKey(presentedKey, candidates[i].KeyHash) {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		return nil, cmdErr(ErrInvalidAPIKey, "Invalid API key")
	}

	switch matched.Status {
	case models.APIKeyStatusActive:
		// fall through to entitlement and context loading
	case models.APIKeyStatusSuspended:
		return nil, cmdErr(ErrSuspendedKey,
			"This API key is suspended. Contact support to restore access: "+a.supportURL)
	case models.APIKeyStatusRevoked:
		return nil, cmdErr(ErrRevokedKey,
			"This API key has been revoked. Generate a new key from your dashboard: "+a.supportURL)
	default:
		return nil, cmdErr(ErrInactiveKey, "This API key is not active")
	}

	entitled, err := a.entitlements.HasActiveEntitlement(ctx, matched.TenantID)
	if err != nil {
		return nil, fmt.Errorf("entitlement check failed: %w", err)
	}

	venues, err := a.venues.ListByTenant(ctx, matched.TenantID)
	if err != nil {
		return nil, fmt.Errorf("venue lookup failed: %w", err)
	}

	systems, err := a.systems.ListByTenant(ctx, matched.TenantID)
	if err != nil {
		return nil, fmt.Errorf("system lookup failed: %w", err)
	}

	// Last-used tracking is best-effort; a failed update is not a correctness
	// problem and must not add latency to every poll.
	keyID := matched.ID
	safego.Go(func() {
		updCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.credentials.UpdateLastUsed(updCtx, keyID)
	})

	return &TenantContext{
		TenantID: matched.TenantID,
		KeyID:    matched.ID,
		Venues:   venues,
		Systems:  systems,
		Entitled: entitled,
	}, nil
}
