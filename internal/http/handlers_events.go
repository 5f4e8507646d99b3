package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// EventServiceInterface defines the event service operations the handlers use.
type EventServiceInterface interface {
	Create(ctx context.Context, organizerID int64, req *model.CreateEventRequest) (*model.Event, error)
	Get(ctx context.Context, id int64, viewer *domainauth.Session) (*model.Event, error)
	ListPublic(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error)
	ListForOrganizer(ctx context.Context, organizerID int64, opts model.EventsListOptions) ([]*model.Event, error)
	Update(ctx context.Context, id int64, actor *domainauth.Session, req model.UpdateEventRequest) (*model.Event, error)
}

// EventHandlers provides HTTP handlers for the public and organizer event
// endpoints. Admin review lives in AdminHandlers.
type EventHandlers struct {
	Svc EventServiceInterface
}

// List returns approved events.
// GET /api/events.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.Svc.ListPublic(r.Context(), eventListOptions(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"events": events})
}

// Get returns one event. Pending and rejected events are visible only to
// their organizer and to admins.
// GET /api/events/{id}.
func (h *EventHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if id == 0 {
		WriteAppError(w, apperrors.NotFound("Event not found."))
		return
	}

	event, err := h.Svc.Get(r.Context(), id, GetSessionFromContext(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"event": event})
}

// Create submits a new event for review.
// POST /api/events (organizer).
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req model.CreateEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Svc.Create(r.Context(), session.UserID, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Message: "Event submitted for review.",
		Data:    map[string]any{"event": event},
	})
}

// Update edits an event owned by the caller (or any event, for admins).
// PATCH /api/events/{id} (organizer).
func (h *EventHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if id == 0 {
		WriteAppError(w, apperrors.NotFound("Event not found."))
		return
	}

	var req model.UpdateEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Svc.Update(r.Context(), id, GetSessionFromContext(r.Context()), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Event updated.", map[string]any{"event": event})
}

// Mine lists the caller's own events in every state.
// GET /api/events/mine (organizer).
func (h *EventHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	opts := eventListOptions(r)
	if status, ok := model.ParseEventStatus(r.URL.Query().Get("status")); ok {
		opts.Status = &status
	}

	events, err := h.Svc.ListForOrganizer(r.Context(), session.UserID, opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"events": events})
}
