package httpx

import (
	"context"
	"net/http"

	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// RegistrationServiceInterface defines the registration operations the handlers use.
type RegistrationServiceInterface interface {
	Register(ctx context.Context, eventID, userID int64) (*model.Registration, error)
	Cancel(ctx context.Context, eventID, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]*model.RegistrationWithEvent, error)
	Attendees(ctx context.Context, eventID int64) ([]*model.Registration, error)
	SeatsTaken(ctx context.Context, eventID int64) (int, error)
}

// RegistrationHandlers provides HTTP handlers for event tickets.
type RegistrationHandlers struct {
	Svc RegistrationServiceInterface
}

// Register books the caller a seat and returns the ticket.
// POST /api/events/{id}/register (authenticated).
func (h *RegistrationHandlers) Register(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	eventID := pathID(r, "id")
	if eventID == 0 {
		WriteAppError(w, apperrors.NotFound("Event not found."))
		return
	}

	reg, err := h.Svc.Register(r.Context(), eventID, session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Message: "You're registered. Your ticket has been emailed to you.",
		Data:    map[string]any{"registration": reg},
	})
}

// Cancel releases the caller's seat.
// DELETE /api/events/{id}/register (authenticated).
func (h *RegistrationHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	eventID := pathID(r, "id")
	if eventID == 0 {
		WriteAppError(w, apperrors.NotFound("Event not found."))
		return
	}

	if err := h.Svc.Cancel(r.Context(), eventID, session.UserID); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Your registration has been cancelled.", nil)
}

// Mine lists the caller's registrations with event details.
// GET /api/me/registrations (authenticated).
func (h *RegistrationHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	regs, err := h.Svc.ListForUser(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"registrations": regs})
}

// Attendees lists registrations for one event, for its organizer.
// GET /api/events/{id}/attendees (organizer).
func (h *RegistrationHandlers) Attendees(w http.ResponseWriter, r *http.Request) {
	eventID := pathID(r, "id")
	if eventID == 0 {
		WriteAppError(w, apperrors.NotFound("Event not found."))
		return
	}

	regs, err := h.Svc.Attendees(r.Context(), eventID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	taken, err := h.Svc.SeatsTaken(r.Context(), eventID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{
		"registrations": regs,
		"seats_taken":   taken,
	})
}
