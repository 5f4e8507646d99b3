package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuslife/campushub/internal/core"
	"github.com/campuslife/campushub/internal/data"
	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

const (
	defaultEventPageSize = 20
	maxEventPageSize     = 100
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Events   core.EventRepository // Required: event repository
	Users    core.UserRepository  // Required: used to notify organizers of decisions
	Notifier *Notifier            // Optional: transactional email
	Logger   *slog.Logger         // Optional: structured logger

	TimeProvider data.TimeProvider // Optional: defaults to real time
}

// EventService owns the event lifecycle: organizers submit events, admins
// approve or reject them, and only approved events appear in public listings.
type EventService struct {
	events   core.EventRepository
	users    core.UserRepository
	notifier *Notifier
	logger   *slog.Logger

	timeProvider data.TimeProvider
}

// NewEventService constructs a new EventService.
func NewEventService(opts EventServiceOptions) (*EventService, error) {
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

	return &EventService{
		events:       opts.Events,
		users:        opts.Users,
		notifier:     opts.Notifier,
		logger:       logger.With("component", "event_service"),
		timeProvider: tp,
	}, nil
}

// MustNewEventService constructs a new EventService and panics on error.
func MustNewEventService(opts EventServiceOptions) *EventService {
	svc, err := NewEventService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Create submits a new event. It lands in the pending state and stays out of
// public listings until an admin approves it.
func (s *EventService) Create(ctx context.Context, organizerID int64, req *model.CreateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if !req.StartsAt.After(s.timeProvider.Now()) {
		return nil, apperrors.ValidationField("starts_at", "Event must start in the future.")
	}

	event, err := s.events.Create(ctx, organizerID, req)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event submitted", "event_id", event.ID, "organizer_id", organizerID, "title", event.Title)
	return event, nil
}

// Get returns one event, hiding unapproved events from everyone but their
// organizer and admins.
func (s *EventService) Get(ctx context.Context, id int64, viewer *domainauth.Session) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event.Status != model.EventStatusApproved && !s.canManage(viewer, event) {
		// Indistinguishable from a missing event on purpose.
		return nil, apperrors.NotFound("Event not found.")
	}
	return event, nil
}

// ListPublic returns approved events for the public listing.
func (s *EventService) ListPublic(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
	approved := model.EventStatusApproved
	opts.Status = &approved
	opts.OrganizerID = nil
	clampEventPage(&opts)

	events, err := s.events.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListForOrganizer returns an organizer's own events in every state.
func (s *EventService) ListForOrganizer(ctx context.Context, organizerID int64, opts model.EventsListOptions) ([]*model.Event, error) {
	opts.OrganizerID = &organizerID
	clampEventPage(&opts)

	events, err := s.events.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	return events, nil
}

// ListAll returns events in every state for the admin review queue.
func (s *EventService) ListAll(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
	clampEventPage(&opts)

	events, err := s.events.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Update edits an event. Only the owning organizer or an admin may edit.
// Editing an already-decided event sends it back through review.
func (s *EventService) Update(ctx context.Context, id int64, actor *domainauth.Session, req model.UpdateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if !s.canManage(actor, current) {
		return nil, apperrors.Forbidden("You do not have permission to edit this event.")
	}

	event, err := s.events.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if current.Status != model.EventStatusPending {
		if err := s.events.SetStatus(ctx, id, model.EventStatusPending); err != nil {
			return nil, fmt.Errorf("reset event status: %w", err)
		}
		event.Status = model.EventStatusPending
	}

	s.logger.Info("event updated", "event_id", id, "actor_id", actorID(actor))
	return event, nil
}

// Decide approves or rejects a pending event and notifies the organizer.
func (s *EventService) Decide(ctx context.Context, id int64, approve bool) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	status := model.EventStatusApproved
	if !approve {
		status = model.EventStatusRejected
	}
	if event.Status == status {
		return event, nil
	}

	if err := s.events.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("set event status: %w", err)
	}
	event.Status = status

	s.logger.Info("event decided", "event_id", id, "status", status)

	if s.notifier != nil {
		organizer, lookupErr := s.users.GetByID(ctx, event.OrganizerID)
		if lookupErr != nil {
			s.logger.Warn("organizer lookup for decision email", "event_id", id, "error", lookupErr)
		} else {
			s.notifier.EventDecisionEmail(organizer.Email, organizer.FirstName, event.Title, approve)
		}
	}

	return event, nil
}

// canManage reports whether the viewer owns the event or is an admin.
func (s *EventService) canManage(viewer *domainauth.Session, event *model.Event) bool {
	if viewer == nil {
		return false
	}
	return viewer.Role == domainauth.RoleAdmin || viewer.UserID == event.OrganizerID
}

func actorID(sess *domainauth.Session) int64 {
	if sess == nil {
		return 0
	}
	return sess.UserID
}

func clampEventPage(opts *model.EventsListOptions) {
	if opts.Limit <= 0 {
		opts.Limit = defaultEventPageSize
	}
	if opts.Limit > maxEventPageSize {
		opts.Limit = maxEventPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
}
