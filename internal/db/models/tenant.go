// Package models defines the database model types for the Songbird backend.
// Each type corresponds to a database table and uses struct tags for both JSON
// serialization and sqlx row scanning. Models are pure data types — query logic
// belongs in the repositories layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a venue operator's account. It owns venues, systems, API keys,
// and exactly one serial counter.
type Tenant struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	BillingCustomerID *string   `json:"billing_customer_id,omitempty" db:"billing_customer_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
