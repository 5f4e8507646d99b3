package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// stubEventService implements EventServiceInterface with overridable funcs.
type stubEventService struct {
	createFunc           func(context.Context, int64, *model.CreateEventRequest) (*model.Event, error)
	getFunc              func(context.Context, int64, *domainauth.Session) (*model.Event, error)
	listPublicFunc       func(context.Context, model.EventsListOptions) ([]*model.Event, error)
	listForOrganizerFunc func(context.Context, int64, model.EventsListOptions) ([]*model.Event, error)
	updateFunc           func(context.Context, int64, *domainauth.Session, model.UpdateEventRequest) (*model.Event, error)
}

func (s *stubEventService) Create(ctx context.Context, organizerID int64, req *model.CreateEventRequest) (*model.Event, error) {
	return s.createFunc(ctx, organizerID, req)
}

func (s *stubEventService) Get(ctx context.Context, id int64, viewer *domainauth.Session) (*model.Event, error) {
	return s.getFunc(ctx, id, viewer)
}

func (s *stubEventService) ListPublic(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
	return s.listPublicFunc(ctx, opts)
}

func (s *stubEventService) ListForOrganizer(ctx context.Context, organizerID int64, opts model.EventsListOptions) ([]*model.Event, error) {
	return s.listForOrganizerFunc(ctx, organizerID, opts)
}

func (s *stubEventService) Update(ctx context.Context, id int64, actor *domainauth.Session, req model.UpdateEventRequest) (*model.Event, error) {
	return s.updateFunc(ctx, id, actor, req)
}

func eventFixture(id int64) *model.Event {
	starts := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)
	return &model.Event{
		ID:          id,
		Title:       "Spring Concert",
		Location:    "Main Quad",
		StartsAt:    starts,
		EndsAt:      starts.Add(2 * time.Hour),
		Capacity:    200,
		Status:      model.EventStatusApproved,
		OrganizerID: 9,
	}
}

func TestEventHandlers_List_PassesQueryFilters(t *testing.T) {
	t.Parallel()
	h := &EventHandlers{Svc: &stubEventService{
		listPublicFunc: func(_ context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
			assert.Equal(t, 10, opts.Limit)
			assert.Equal(t, 20, opts.Offset)
			assert.True(t, opts.UpcomingOnly)
			require.NotNil(t, opts.Q)
			assert.Equal(t, "concert", *opts.Q)
			return []*model.Event{eventFixture(1)}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/events?limit=10&offset=20&upcoming=true&q=concert", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Spring Concert")
}

func TestEventHandlers_Get(t *testing.T) {
	t.Parallel()
	h := &EventHandlers{Svc: &stubEventService{
		getFunc: func(_ context.Context, id int64, viewer *domainauth.Session) (*model.Event, error) {
			assert.Equal(t, int64(42), id)
			assert.Nil(t, viewer)
			return eventFixture(42), nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/events/42", nil)
	req.SetPathValue("id", "42")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventHandlers_Get_BadID(t *testing.T) {
	t.Parallel()
	h := &EventHandlers{Svc: &stubEventService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/events/banana", nil)
	req.SetPathValue("id", "banana")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlers_Create(t *testing.T) {
	t.Parallel()
	h := &EventHandlers{Svc: &stubEventService{
		createFunc: func(_ context.Context, organizerID int64, req *model.CreateEventRequest) (*model.Event, error) {
			assert.Equal(t, int64(9), organizerID)
			assert.Equal(t, "Spring Concert", req.Title)
			return eventFixture(42), nil
		},
	}}

	sess := sessionFixture("sess-org")
	sess.UserID = 9
	sess.Role = domainauth.RoleOrganizer

	body := `{"title":"Spring Concert","location":"Main Quad","starts_at":"2025-09-01T18:00:00Z","ends_at":"2025-09-01T20:00:00Z","capacity":200}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	w := httptest.NewRecorder()
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Message, "submitted for review")
}

func TestEventHandlers_Update_Forbidden(t *testing.T) {
	t.Parallel()
	h := &EventHandlers{Svc: &stubEventService{
		updateFunc: func(context.Context, int64, *domainauth.Session, model.UpdateEventRequest) (*model.Event, error) {
			return nil, apperrors.Forbidden("You do not have permission to edit this event.")
		},
	}}

	sess := sessionFixture("sess-1")
	req := httptest.NewRequest(http.MethodPatch, "/api/events/42", strings.NewReader(`{"title":"Hijacked"}`))
	req.SetPathValue("id", "42")
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	w := httptest.NewRecorder()
	h.Update(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEventHandlers_Mine_FiltersByStatus(t *testing.T) {
	t.Parallel()
	h := &EventHandlers{Svc: &stubEventService{
		listForOrganizerFunc: func(_ context.Context, organizerID int64, opts model.EventsListOptions) ([]*model.Event, error) {
			assert.Equal(t, int64(9), organizerID)
			require.NotNil(t, opts.Status)
			assert.Equal(t, model.EventStatusPending, *opts.Status)
			return nil, nil
		},
	}}

	sess := sessionFixture("sess-org")
	sess.UserID = 9
	sess.Role = domainauth.RoleOrganizer
	req := httptest.NewRequest(http.MethodGet, "/api/events/mine?status=pending", nil)
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	w := httptest.NewRecorder()
	h.Mine(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
