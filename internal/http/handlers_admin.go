package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// UserAdminServiceInterface defines the admin-side user management operations.
type UserAdminServiceInterface interface {
	SearchUsers(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	AssignRole(ctx context.Context, actorID, userID int64, role domainauth.Role) error
	SetUserStatus(ctx context.Context, actorID, userID int64, status model.UserStatus) error
}

// EventAdminServiceInterface defines the admin-side event review operations.
type EventAdminServiceInterface interface {
	ListAll(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error)
	Decide(ctx context.Context, id int64, approve bool) (*model.Event, error)
}

// AdminHandlers provides HTTP handlers for the admin back office. Every
// route is gated on the admin role by middleware.
type AdminHandlers struct {
	Users  UserAdminServiceInterface
	Events EventAdminServiceInterface
}

// SearchUsers pages through accounts by partial name, username, or email.
// GET /api/admin/users?q=&role=&limit=&offset=.
func (h *AdminHandlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	opts := model.UsersListOptions{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := domainauth.Role(raw)
		opts.Role = &role
	}

	users, err := h.Users.SearchUsers(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"users": users})
}

// GetUser returns one account for the detail view.
// GET /api/admin/users/{id}.
func (h *AdminHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if id == 0 {
		WriteAppError(w, apperrors.NotFound("User not found."))
		return
	}

	user, err := h.Users.GetUser(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"user": user})
}

// AssignRole moves a user to a different role.
// PUT /api/admin/users/{id}/role.
func (h *AdminHandlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	id := pathID(r, "id")
	if id == 0 {
		WriteAppError(w, apperrors.NotFound("User not found."))
		return
	}

	var in struct {
		Role string `json:"role"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	if err := h.Users.AssignRole(r.Context(), session.UserID, id, domainauth.Role(in.Role)); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Role updated.", nil)
}

// SetStatus suspends or reactivates an account.
// PUT /api/admin/users/{id}/status.
func (h *AdminHandlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	id := pathID(r, "id")
	if id == 0 {
		WriteAppError(w, apperrors.NotFound("User not found."))
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	if err := h.Users.SetUserStatus(r.Context(), session.UserID, id, model.UserStatus(in.Status)); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Account status updated.", nil)
}

// ListEvents returns events in every state for the review queue.
// GET /api/admin/events?status=pending.
func (h *AdminHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	opts := eventListOptions(r)
	if status, ok := model.ParseEventStatus(r.URL.Query().Get("status")); ok {
		opts.Status = &status
	}

	events, err := h.Events.ListAll(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "", map[string]any{"events": events})
}

// ApproveEvent approves a pending event.
// POST /api/admin/events/{id}/approve.
func (h *AdminHandlers) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	h.decideEvent(w, r, true)
}

// RejectEvent rejects a pending event.
// POST /api/admin/events/{id}/reject.
func (h *AdminHandlers) RejectEvent(w http.ResponseWriter, r *http.Request) {
	h.decideEvent(w, r, false)
}

func (h *AdminHandlers) decideEvent(w http.ResponseWriter, r *http.Request, approve bool) {
	id := pathID(r, "id")
	if id == 0 {
		WriteAppError(w, apperrors.NotFound("Event not found."))
		return
	}

	event, err := h.Events.Decide(r.Context(), id, approve)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	message := "Event approved."
	if !approve {
		message = "Event rejected."
	}
	WriteSuccess(w, message, map[string]any{"event": event})
}
