// Package sync implements the device synchronization endpoint: a single
// command-oriented HTTP interface that desktop karaoke hosts poll to detect new
// song requests, report serials, toggle request-acceptance, and upload song
// catalogs.
//
// Protocol shape: one POST endpoint, JSON envelope {api_key, command, ...}.
// Application-level outcomes — including every authentication and lookup
// failure — travel inside an HTTP 200 body with {"error": true, "errorString":
// ...} so simple polling clients never need to branch on HTTP status. Only
// rate limiting (429) and unhandled failures (500) use the status code.
package sync

// Command names accepted by the dispatcher.
const (
	CmdGetSerial              = "getSerial"
	CmdGetVenues              = "getVenues"
	CmdGetRequests            = "getRequests"
	CmdDeleteRequest          = "deleteRequest"
	CmdClearRequests          = "clearRequests"
	CmdSetAccepting           = "setAccepting"
	CmdAddSongs               = "addSongs"
	CmdClearDatabase          = "clearDatabase"
	CmdGetAlert               = "getAlert"
	CmdGetEntitledSystemCount = "getEntitledSystemCount"
	CmdConnectionTest         = "connectionTest"
)

// Envelope is the request body every device command arrives in. Command-specific
// fields are pointers so the dispatcher can distinguish "absent" from zero values.
type Envelope struct {
	APIKey    string      `json:"api_key"`
	Command   string      `json:"command"`
	VenueID   *int64      `json:"venue_id,omitempty"`
	RequestID *int64      `json:"request_id,omitempty"`
	SystemID  *int64      `json:"system_id,omitempty"`
	Accepting *bool       `json:"accepting,omitempty"`
	Songs     []SongEntry `json:"songs,omitempty"`
}

// SongEntry is one catalog item in an addSongs upload.
type SongEntry struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// ErrorCode identifies a protocol-level failure kind. Codes are stable and
// used as the metrics outcome label; messages are human-readable remediation
// text and may change.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "invalid_request"
	ErrInvalidAPIKey   ErrorCode = "invalid_api_key"
	ErrSuspendedKey    ErrorCode = "suspended_key"
	ErrRevokedKey      ErrorCode = "revoked_key"
	ErrInactiveKey     ErrorCode = "inactive_key"
	ErrNoEntitlement   ErrorCode = "no_entitlement"
	ErrVenueNotFound   ErrorCode = "venue_not_found"
	ErrRequestNotFound ErrorCode = "request_not_found"
	ErrValidation      ErrorCode = "validation_error"
	ErrUnknownCommand  ErrorCode = "unknown_command"
	ErrRateLimited     ErrorCode = "rate_limited"
	ErrInternal        ErrorCode = "internal_error"
)

// CommandError is an application-level failure reported inside the response
// envelope. It is not a transport error: every CommandError except rate
// limiting and internal failures is delivered with HTTP 200.
type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func cmdErr(code ErrorCode, message string) *CommandError {
	return &CommandError{Code: code, Message: message}
}
