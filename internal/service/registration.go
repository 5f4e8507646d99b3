package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campuslife/campushub/internal/core"
	"github.com/campuslife/campushub/internal/data"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// RegistrationServiceOptions groups dependencies for RegistrationService.
type RegistrationServiceOptions struct {
	Registrations core.RegistrationRepository // Required: registration repository
	Events        core.EventRepository        // Required: event repository
	Users         core.UserRepository         // Required: used for ticket email
	Notifier      *Notifier                   // Optional: transactional email
	Logger        *slog.Logger                // Optional: structured logger

	TimeProvider data.TimeProvider // Optional: defaults to real time
}

// RegistrationService hands out event tickets. Capacity is enforced inside
// the repository transaction; this layer adds the business gates (approved
// event, not yet started) and the confirmation email.
type RegistrationService struct {
	registrations core.RegistrationRepository
	events        core.EventRepository
	users         core.UserRepository
	notifier      *Notifier
	logger        *slog.Logger

	timeProvider data.TimeProvider
}

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(opts RegistrationServiceOptions) (*RegistrationService, error) {
	if opts.Registrations == nil {
		return nil, errors.New("RegistrationRepository is required")
	}
	if opts.Events == nil {
		return nil, errors.New("EventRepository is required")
	}
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	return &RegistrationService{
		registrations: opts.Registrations,
		events:        opts.Events,
		users:         opts.Users,
		notifier:      opts.Notifier,
		logger:        logger.With("component", "registration_service"),
		timeProvider:  tp,
	}, nil
}

// MustNewRegistrationService constructs a new RegistrationService and panics on error.
func MustNewRegistrationService(opts RegistrationServiceOptions) *RegistrationService {
	svc, err := NewRegistrationService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Register books a seat at an event and emails the ticket. The repository
// runs the capacity check and the insert in one transaction, so two racing
// registrations for the last seat cannot both win.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID int64) (*model.Registration, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if !event.OpenForRegistration(s.timeProvider.Now()) {
		return nil, apperrors.Validation("This event is not open for registration.")
	}

	reg, err := s.registrations.Create(ctx, eventID, userID, newTicketCode())
	if err != nil {
		if errors.Is(err, data.ErrEventFull) {
			return nil, apperrors.Conflict("This event is full.")
		}
		if apperrors.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.logger.Info("registration created", "event_id", eventID, "user_id", userID, "ticket", reg.TicketCode)

	if s.notifier != nil {
		user, lookupErr := s.users.GetByID(ctx, userID)
		if lookupErr != nil {
			s.logger.Warn("user lookup for ticket email", "user_id", userID, "error", lookupErr)
		} else {
			s.notifier.TicketEmail(user.Email, user.FirstName, event.Title, reg.TicketCode)
		}
	}

	return reg, nil
}

// Cancel releases the caller's seat. Cancelling twice, or without a
// registration, reports not found.
func (s *RegistrationService) Cancel(ctx context.Context, eventID, userID int64) error {
	if err := s.registrations.Cancel(ctx, eventID, userID); err != nil {
		if errors.Is(err, data.ErrRegistrationNotFound) || apperrors.IsNotFound(err) {
			return apperrors.NotFound("You are not registered for this event.")
		}
		return fmt.Errorf("cancel registration: %w", err)
	}

	s.logger.Info("registration cancelled", "event_id", eventID, "user_id", userID)
	return nil
}

// ListForUser returns the caller's registrations with event details attached.
func (s *RegistrationService) ListForUser(ctx context.Context, userID int64) ([]*model.RegistrationWithEvent, error) {
	regs, err := s.registrations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// Attendees returns the registrations for one event, for the organizer view.
func (s *RegistrationService) Attendees(ctx context.Context, eventID int64) ([]*model.Registration, error) {
	regs, err := s.registrations.ListForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return regs, nil
}

// SeatsTaken reports confirmed registrations for an event.
func (s *RegistrationService) SeatsTaken(ctx context.Context, eventID int64) (int, error) {
	n, err := s.registrations.CountConfirmed(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// newTicketCode mints an opaque ticket identifier.
func newTicketCode() string {
	return uuid.NewString()
}
