package sync

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

func (h *Handler) getSerial(ctx context.Context, tc *TenantContext, _ *Envelope) (gin.H, *CommandError) {
	serial, err := h.serials.Current(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}
	return gin.H{"serial": serial}, nil
}

func (h *Handler) getVenues(_ context.Context, tc *TenantContext, _ *Envelope) (gin.H, *CommandError) {
	venues := tc.Venues
	if venues == nil {
		venues = []models.Venue{}
	}
	return gin.H{"venues": venues}, nil
}

func (h *Handler) getRequests(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError) {
	if env.VenueID == nil {
		return nil, cmdErr(ErrInvalidRequest, "venue_id is required")
	}
	if tc.Venue(*env.VenueID) == nil {
		return nil, cmdErr(ErrVenueNotFound, "Venue not found")
	}

	requests, err := h.requests.ListUnprocessed(ctx, *env.VenueID)
	if err != nil {
		return nil, internal(err)
	}
	if requests == nil {
		requests = []models.Request{}
	}

	serial, err := h.serials.Current(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}

	return gin.H{"requests": requests, "serial": serial}, nil
}

func (h *Handler) deleteRequest(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError) {
	if env.VenueID == nil || env.RequestID == nil {
		return nil, cmdErr(ErrInvalidRequest, "venue_id and request_id are required")
	}
	if cerr := h.requireEntitlement(tc); cerr != nil {
		return nil, cerr
	}
	if tc.Venue(*env.VenueID) == nil {
		return nil, cmdErr(ErrVenueNotFound, "Venue not found")
	}

	found, err := h.requests.MarkProcessed(ctx, *env.VenueID, *env.RequestID)
	if err != nil {
		return nil, internal(err)
	}
	if !found {
		return nil, cmdErr(ErrRequestNotFound, "Request not found")
	}

	serial, err := h.serials.Bump(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}
	return gin.H{"serial": serial}, nil
}

func (h *Handler) clearRequests(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError) {
	if env.VenueID == nil {
		return nil, cmdErr(ErrInvalidRequest, "venue_id is required")
	}
	if cerr := h.requireEntitlement(tc); cerr != nil {
		return nil, cerr
	}
	if tc.Venue(*env.VenueID) == nil {
		return nil, cmdErr(ErrVenueNotFound, "Venue not found")
	}

	// Clearing an already-empty queue still succeeds and still bumps the
	// serial; devices treat the response uniformly.
	if _, err := h.requests.ClearUnprocessed(ctx, *env.VenueID); err != nil {
		return nil, internal(err)
	}

	serial, err := h.serials.Bump(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}
	return gin.H{"serial": serial}, nil
}

func (h *Handler) setAccepting(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError) {
	if env.VenueID == nil || env.Accepting == nil {
		return nil, cmdErr(ErrInvalidRequest, "venue_id and accepting are required")
	}
	if cerr := h.requireEntitlement(tc); cerr != nil {
		return nil, cerr
	}

	systemID := h.systemID(env)
	if err := h.systems.Ensure(ctx, tc.TenantID, systemID); err != nil {
		return nil, internal(err)
	}

	found, err := h.venues.SetAccepting(ctx, tc.TenantID, *env.VenueID, systemID, *env.Accepting)
	if err != nil {
		return nil, internal(err)
	}
	if !found {
		return nil, cmdErr(ErrVenueNotFound, "Venue not found")
	}

	serial, err := h.serials.Bump(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}
	return gin.H{"accepting": *env.Accepting, "serial": serial}, nil
}

func (h *Handler) addSongs(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError) {
	if len(env.Songs) == 0 {
		return nil, cmdErr(ErrInvalidRequest, "songs is required and must not be empty")
	}
	if cerr := h.requireEntitlement(tc); cerr != nil {
		return nil, cerr
	}

	systemID := h.systemID(env)
	if err := h.systems.Ensure(ctx, tc.TenantID, systemID); err != nil {
		return nil, internal(err)
	}

	// Per-entry validation: bad entries are reported individually while the
	// valid remainder is still stored, so one malformed row in a 50k-song
	// upload does not force the device to resend everything.
	var (
		itemErrors []string
		valid      []models.Song
		lastArtist string
		lastTitle  string
	)
	for i, entry := range env.Songs {
		if entry.Artist == "" || entry.Title == "" {
			itemErrors = append(itemErrors, fmt.Sprintf("entry %d: artist and title are required", i))
			continue
		}
		valid = append(valid, models.Song{
			TenantID: tc.TenantID,
			SystemID: systemID,
			Artist:   entry.Artist,
			Title:    entry.Title,
			ComboKey: models.SongComboKey(entry.Artist, entry.Title),
		})
		lastArtist = entry.Artist
		lastTitle = entry.Title
	}

	var inserted int64
	if len(valid) > 0 {
		var err error
		inserted, err = h.catalog.BulkInsert(ctx, valid)
		if err != nil {
			return nil, internal(err)
		}
	}

	serial, err := h.serials.Bump(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}

	if itemErrors == nil {
		itemErrors = []string{}
	}
	fields := gin.H{
		"entries processed": inserted,
		"last_artist":       lastArtist,
		"last_title":        lastTitle,
		"errors":            itemErrors,
		"serial":            serial,
	}
	if len(itemErrors) > 0 {
		return fields, cmdErr(ErrValidation, fmt.Sprintf("%d entries failed validation", len(itemErrors)))
	}
	return fields, nil
}

func (h *Handler) clearDatabase(ctx context.Context, tc *TenantContext, env *Envelope) (gin.H, *CommandError) {
	if cerr := h.requireEntitlement(tc); cerr != nil {
		return nil, cerr
	}

	systemID := h.systemID(env)
	if _, err := h.catalog.DeleteBySystem(ctx, tc.TenantID, systemID); err != nil {
		return nil, internal(err)
	}

	serial, err := h.serials.Bump(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}
	return gin.H{"serial": serial}, nil
}

// getAlert is a fixed empty-alert response. Operator-authored broadcast alerts
// never made it past the dashboard mockups, but removing the command would
// break deployed devices that poll it on startup.
func (h *Handler) getAlert(_ context.Context, _ *TenantContext, _ *Envelope) (gin.H, *CommandError) {
	return gin.H{"alert": false, "title": "", "message": ""}, nil
}

func (h *Handler) getEntitledSystemCount(ctx context.Context, tc *TenantContext, _ *Envelope) (gin.H, *CommandError) {
	count, err := h.systems.CountByTenant(ctx, tc.TenantID)
	if err != nil {
		return nil, internal(err)
	}
	return gin.H{"count": count}, nil
}

func (h *Handler) connectionTest(_ context.Context, _ *TenantContext, _ *Envelope) (gin.H, *CommandError) {
	return gin.H{"connection": "ok"}, nil
}

// systemID resolves the effective karaoke system for a command, falling back
// to the configured default when the device does not send one.
func (h *Handler) systemID(env *Envelope) int64 {
	if env.SystemID != nil {
		return *env.SystemID
	}
	return h.defaultSystemID
}

func (h *Handler) requireEntitlement(tc *TenantContext) *CommandError {
	if !tc.Entitled {
		return cmdErr(ErrNoEntitlement,
			"Your subscription is not active. Renew it to resume syncing: "+h.supportURL)
	}
	return nil
}

func internal(err error) *CommandError {
	return &CommandError{Code: ErrInternal, Message: err.Error()}
}
