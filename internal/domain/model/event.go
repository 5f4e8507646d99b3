package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxEventTitleLen    = 200
	maxEventLocationLen = 200
)

// EventStatus tracks an event through the approval workflow.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Valid reports whether the event status is supported.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	default:
		return false
	}
}

// ParseEventStatus normalizes a status string and reports whether it is supported.
func ParseEventStatus(value string) (EventStatus, bool) {
	status := EventStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Event represents a campus event. New events start pending and only
// become visible to regular users once an admin approves them.
type Event struct {
	ID          int64       `json:"id"           db:"id"`
	Title       string      `json:"title"        db:"title"`
	Description string      `json:"description"  db:"description"`
	Location    string      `json:"location"     db:"location"`
	StartsAt    time.Time   `json:"starts_at"    db:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"      db:"ends_at"`
	Capacity    int         `json:"capacity"     db:"capacity"`
	Status      EventStatus `json:"status"       db:"status"`
	OrganizerID int64       `json:"organizer_id" db:"organizer_id"`
	CreatedAt   time.Time   `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"   db:"updated_at"`
}

// OpenForRegistration reports whether the event accepts registrations at the given time.
func (e Event) OpenForRegistration(now time.Time) bool {
	return e.Status == EventStatusApproved && now.Before(e.StartsAt)
}

// CreateEventRequest represents parameters to create an Event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
}

// Validate validates CreateEventRequest.
func (r *CreateEventRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxEventTitleLen {
		return errors.New("title cannot exceed 200 characters")
	}
	if utf8.RuneCountInString(r.Location) > maxEventLocationLen {
		return errors.New("location cannot exceed 200 characters")
	}
	if r.StartsAt.IsZero() || r.EndsAt.IsZero() {
		return errors.New("starts_at and ends_at are required")
	}
	if !r.EndsAt.After(r.StartsAt) {
		return errors.New("ends_at must be after starts_at")
	}
	if r.Capacity <= 0 {
		return errors.New("capacity must be > 0")
	}
	r.Title = title
	return nil
}

// UpdateEventRequest represents parameters to update an Event.
// Nil fields are left untouched.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
}

// Validate validates UpdateEventRequest.
func (r *UpdateEventRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxEventTitleLen {
			return errors.New("title cannot exceed 200 characters")
		}
		r.Title = &title
	}
	if r.Location != nil && utf8.RuneCountInString(*r.Location) > maxEventLocationLen {
		return errors.New("location cannot exceed 200 characters")
	}
	if r.StartsAt != nil && r.EndsAt != nil && !r.EndsAt.After(*r.StartsAt) {
		return errors.New("ends_at must be after starts_at")
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return errors.New("capacity must be > 0")
	}
	return nil
}

// EventsListOptions controls paging and filtering for listing events.
// Q matches title via ILIKE substring; Status and OrganizerID match exactly.
type EventsListOptions struct {
	Limit       int
	Offset      int
	Q           *string
	Status      *EventStatus
	OrganizerID *int64
	// UpcomingOnly restricts results to events that have not started yet.
	UpcomingOnly bool
}
