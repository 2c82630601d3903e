package models

import "time"

// Request is one submitted song request. Rows are created by the public
// request-submission surface and consumed by devices via the sync protocol.
// processed=true is a terminal soft-delete marker; rows are retained for
// history and never hard-deleted by the sync subsystem.
type Request struct {
	ID          int64     `json:"request_id" db:"id"`
	VenueID     int64     `json:"-" db:"venue_id"`
	Artist      string    `json:"artist" db:"artist"`
	Title       string    `json:"title" db:"title"`
	Singer      string    `json:"singer" db:"singer"`
	KeyChange   int       `json:"key_change" db:"key_change"`
	Processed   bool      `json:"-" db:"processed"`
	RequestTime time.Time `json:"request_time" db:"request_time"`
}
