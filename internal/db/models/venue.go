package models

import (
	"time"

	"github.com/google/uuid"
)

// Venue is a physical location under a tenant. The integer primary key is the
// identifier devices address in sync commands; the URL slug is globally unique
// and used by the public request-submission page.
type Venue struct {
	ID        int64     `json:"venue_id" db:"id"`
	TenantID  uuid.UUID `json:"-" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	URLName   string    `json:"url_name" db:"url_name"`
	Accepting bool      `json:"accepting" db:"accepting"`
	SystemID  int64     `json:"system_id" db:"system_id"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// System is a device-facing integer identifier scoped to one tenant,
// representing one physical karaoke-hosting installation. Immutable once
// created except for the display name.
type System struct {
	TenantID  uuid.UUID `json:"-" db:"tenant_id"`
	SystemID  int64     `json:"system_id" db:"system_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}
