package sync

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/songbird-live/songbird-backend/internal/db/models"
	"github.com/songbird-live/songbird-backend/internal/telemetry"
)

// RequestQueue is the pending song-request store a device drains.
// Implemented by repositories.RequestRepository.
type RequestQueue interface {
	ListUnprocessed(ctx context.Context, venueID int64) ([]models.Request, error)
	MarkProcessed(ctx context.Context, venueID, requestID int64) (bool, error)
	ClearUnprocessed(ctx context.Context, venueID int64) (int64, error)
}

// VenueStore mutates venue acceptance state. Implemented by
// repositories.VenueRepository.
type VenueStore interface {
	SetAccepting(ctx context.Context, tenantID uuid.UUID, venueID, systemID int64, accepting bool) (bool, error)
}

// Catalog stores a tenant's uploaded song lists. Implemented by
// repositories.SongRepository.
type Catalog interface {
	BulkInsert(ctx context.Context, songs []models.Song) (int64, error)
	DeleteBySystem(ctx context.Context, tenantID uuid.UUID, systemID int64) (int64, error)
}

// SerialLedger reads and advances the tenant's change serial. Implemented by
// repositories.SerialRepository.
type SerialLedger interface {
	Current(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Bump(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// SystemRegistry registers karaoke systems as they are first seen. Implemented
// by repositories.SystemRepository.
type SystemRegistry interface {
	Ensure(ctx context.Context, tenantID uuid.UUID, systemID int64) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// Handler dispatches sync protocol commands.
type Handler struct {
	authenticator   *Authenticator
	requests        RequestQueue
	venues          VenueStore
	catalog         Catalog
	serials         SerialLedger
	systems         SystemRegistry
	supportURL      string
	defaultSystemID int64
}

// NewHandler creates the sync command dispatcher.
func NewHandler(authenticator *Authenticator, requests RequestQueue, venues VenueStore, catalog Catalog, serials SerialLedger, systems SystemRegistry, supportURL string, defaultSystemID int64) *Handler {
	return &Handler{
		authenticator:   authenticator,
		requests:        requests,
		venues:          venues,
		catalog:         catalog,
		serials:         serials,
		systems:         systems,
		supportURL:      supportURL,
		defaultSystemID: defaultSystemID,
	}
}

// handlerFunc executes one command under an authenticated tenant context and
// returns the command-specific response fields, or a CommandError.
type handlerFunc func(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError)

// Handle is the single POST endpoint devices talk to. Every outcome except
// rate limiting and internal failures is an HTTP 200 whose body carries the
// error flag.
func (h *Handler) Handle(c *gin.Context) {
	var env Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		respond(c, "", nil, cmdErr(ErrInvalidRequest, "Invalid request format"))
		return
	}
	if env.Command == "" || env.APIKey == "" {
		respond(c, env.Command, nil, cmdErr(ErrInvalidRequest, "Invalid request format"))
		return
	}

	tc, err := h.authenticator.Authenticate(c.Request.Context(), env.APIKey)
	if err != nil {
		if cerr, ok := err.(*CommandError); ok {
			respond(c, env.Command, nil, cerr)
			return
		}
		h.internalError(c, env.Command, err)
		return
	}

	fn := h.route(env.Command)
	if fn == nil {
		respond(c, env.Command, nil, cmdErr(ErrUnknownCommand, "Unknown command: "+env.Command))
		return
	}

	fields, cerr := fn(c.Request.Context(), tc, &env)
	if cerr != nil && cerr.Code == ErrInternal {
		h.internalError(c, env.Command, cerr)
		return
	}
	respond(c, env.Command, fields, cerr)
}

func (h *Handler) route(command string) handlerFunc {
	switch command {
	case CmdGetSerial:
		return h.getSerial
	case CmdGetVenues:
		return h.getVenues
	case CmdGetRequests:
		return h.getRequests
	case CmdDeleteRequest:
		return h.deleteRequest
	case CmdClearRequests:
		return h.clearRequests
	case CmdSetAccepting:
		return h.setAccepting
	case CmdAddSongs:
		return h.addSongs
	case CmdClearDatabase:
		return h.clearDatabase
	case CmdGetAlert:
		return h.getAlert
	case CmdGetEntitledSystemCount:
		return h.getEntitledSystemCount
	case CmdConnectionTest:
		return h.connectionTest
	default:
		return nil
	}
}

// respond serializes every sync response through one code path so the envelope
// shape cannot drift between commands.
func respond(c *gin.Context, command string, fields gin.H, cerr *CommandError) {
	body := gin.H{
		"command": command,
		"error":   false,
	}
	for k, v := range fields {
		body[k] = v
	}

	outcome := "ok"
	if cerr != nil {
		body["error"] = true
		body["errorString"] = cerr.Message
		outcome = string(cerr.Code)
	}
	telemetry.SyncCommandsTotal.WithLabelValues(commandLabel(command), outcome).Inc()

	c.JSON(http.StatusOK, body)
}

// internalError is the only path that surfaces an HTTP 500: the failure is
// server-side, details go to the log, and the device gets a generic message.
func (h *Handler) internalError(c *gin.Context, command string, err error) {
	slog.Error("sync command failed",
		"command", command,
		"request_id", c.GetString("request_id"),
		"error", err,
	)
	telemetry.SyncCommandsTotal.WithLabelValues(commandLabel(command), string(ErrInternal)).Inc()
	c.JSON(http.StatusInternalServerError, gin.H{
		"command":     command,
		"error":       true,
		"errorString": "Internal server error",
	})
}

// commandLabel bounds metric label cardinality: anything not in the command
// set collapses to one label value.
func commandLabel(command string) string {
	switch command {
	case CmdGetSerial, CmdGetVenues, CmdGetRequests, CmdDeleteRequest,
		CmdClearRequests, CmdSetAccepting, CmdAddSongs, CmdClearDatabase,
		CmdGetAlert, CmdGetEntitledSystemCount, CmdConnectionTest:
		return command
	default:
		return "<unknown>"
	}
}
