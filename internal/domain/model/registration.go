package model

import "time"

// RegistrationStatus tracks whether a ticket is live.
type RegistrationStatus string

const (
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// Valid reports whether the registration status is supported.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusConfirmed, RegistrationStatusCancelled:
		return true
	default:
		return false
	}
}

// Registration represents a user's ticket for an event. The (event_id,
// user_id) pair is unique; the database constraint is the final word on
// duplicate registrations.
type Registration struct {
	ID         int64              `json:"id"          db:"id"`
	EventID    int64              `json:"event_id"    db:"event_id"`
	UserID     int64              `json:"user_id"     db:"user_id"`
	TicketCode string             `json:"ticket_code" db:"ticket_code"`
	Status     RegistrationStatus `json:"status"      db:"status"`
	CreatedAt  time.Time          `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"  db:"updated_at"`
}

// RegistrationWithEvent joins a ticket with its event for listings.
type RegistrationWithEvent struct {
	Registration
	EventTitle    string    `json:"event_title"     db:"event_title"`
	EventLocation string    `json:"event_location"  db:"event_location"`
	EventStartsAt time.Time `json:"event_starts_at" db:"event_starts_at"`
}
