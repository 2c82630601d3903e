package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Song is one catalog entry, scoped to tenant x system. ComboKey is the
// normalised de-duplication key; (tenant_id, system_id, combo_key) is unique
// and duplicate uploads are silently dropped.
type Song struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"-" db:"tenant_id"`
	SystemID  int64     `json:"system_id" db:"system_id"`
	Artist    string    `json:"artist" db:"artist"`
	Title     string    `json:"title" db:"title"`
	ComboKey  string    `json:"-" db:"combo_key"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// SongComboKey derives the normalised de-duplication key for an artist/title
// pair: lower-cased, whitespace-collapsed, joined with a separator that cannot
// appear in the collapsed parts.
func SongComboKey(artist, title string) string {
	return normalize(artist) + "|" + normalize(title)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
