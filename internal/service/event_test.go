package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campuslife/campushub/internal/data"
	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/campuslife/campushub/internal/mocks"
	mocksauth "github.com/campuslife/campushub/internal/mocks/auth"
)

type eventFixture struct {
	events   *mocks.MockEventRepository
	users    *mocks.MockUserRepository
	mailer   *mocksauth.RecordingMailer
	notifier *Notifier
	clock    *data.FixedTimeProvider
	svc      *EventService
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &eventFixture{
		events: mocks.NewMockEventRepository(ctrl),
		users:  mocks.NewMockUserRepository(ctrl),
		mailer: mocksauth.NewRecordingMailer(),
		clock:  data.NewFixedTimeProvider(testBaseTime),
	}
	f.notifier = NewNotifier(NotifierOptions{
		Mailer:  f.mailer,
		BaseURL: "http://localhost:8080",
	})
	f.svc = MustNewEventService(EventServiceOptions{
		Events:       f.events,
		Users:        f.users,
		Notifier:     f.notifier,
		TimeProvider: f.clock,
	})
	return f
}

func validCreateEventRequest() *model.CreateEventRequest {
	return &model.CreateEventRequest{
		Title:    "Spring Concert",
		Location: "Main Quad",
		StartsAt: testBaseTime.Add(48 * time.Hour),
		EndsAt:   testBaseTime.Add(50 * time.Hour),
		Capacity: 200,
	}
}

func pendingEvent() *model.Event {
	return &model.Event{
		ID:          42,
		Title:       "Spring Concert",
		Location:    "Main Quad",
		StartsAt:    testBaseTime.Add(48 * time.Hour),
		EndsAt:      testBaseTime.Add(50 * time.Hour),
		Capacity:    200,
		Status:      model.EventStatusPending,
		OrganizerID: 9,
	}
}

func organizerSession() *domainauth.Session {
	return &domainauth.Session{ID: "sess-org", UserID: 9, Role: domainauth.RoleOrganizer}
}

func adminSession() *domainauth.Session {
	return &domainauth.Session{ID: "sess-admin", UserID: 1, Role: domainauth.RoleAdmin}
}

func TestEventService_Create(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()
	req := validCreateEventRequest()

	f.events.EXPECT().Create(ctx, int64(9), req).Return(pendingEvent(), nil)

	event, err := f.svc.Create(ctx, 9, req)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusPending, event.Status)
}

func TestEventService_Create_PastStartRejected(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)

	req := validCreateEventRequest()
	req.StartsAt = testBaseTime.Add(-time.Hour)
	req.EndsAt = testBaseTime.Add(time.Hour)

	_, err := f.svc.Create(context.Background(), 9, req)
	require.Error(t, err)
	assert.Equal(t, "starts_at", apperrors.GetField(err))
}

func TestEventService_Create_InvalidRequest(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)

	req := validCreateEventRequest()
	req.Capacity = 0

	_, err := f.svc.Create(context.Background(), 9, req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestEventService_Get_HidesPendingFromPublic(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil).Times(2)

	// Anonymous viewer: looks exactly like a missing event.
	_, err := f.svc.Get(ctx, 42, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))

	// Unrelated logged-in user: same.
	viewer := &domainauth.Session{ID: "s", UserID: 500, Role: domainauth.RoleUser}
	_, err = f.svc.Get(ctx, 42, viewer)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestEventService_Get_OwnerAndAdminSeePending(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil).Times(2)

	event, err := f.svc.Get(ctx, 42, organizerSession())
	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)

	_, err = f.svc.Get(ctx, 42, adminSession())
	require.NoError(t, err)
}

func TestEventService_ListPublic_ForcesApprovedFilter(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	pending := model.EventStatusPending
	organizer := int64(9)

	f.events.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
			require.NotNil(t, opts.Status)
			assert.Equal(t, model.EventStatusApproved, *opts.Status)
			assert.Nil(t, opts.OrganizerID)
			assert.Equal(t, defaultEventPageSize, opts.Limit)
			return nil, nil
		})

	// Caller-supplied filters must not leak unapproved events.
	_, err := f.svc.ListPublic(ctx, model.EventsListOptions{Status: &pending, OrganizerID: &organizer})
	require.NoError(t, err)
}

func TestEventService_ListForOrganizer(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	f.events.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
			require.NotNil(t, opts.OrganizerID)
			assert.Equal(t, int64(9), *opts.OrganizerID)
			return []*model.Event{pendingEvent()}, nil
		})

	events, err := f.svc.ListForOrganizer(ctx, 9, model.EventsListOptions{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventService_Update_OwnerOnly(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil)

	stranger := &domainauth.Session{ID: "s", UserID: 500, Role: domainauth.RoleOrganizer}
	title := "New Title"
	_, err := f.svc.Update(ctx, 42, stranger, model.UpdateEventRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.GetCode(err))
}

func TestEventService_Update_DecidedEventGoesBackToPending(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	approved := pendingEvent()
	approved.Status = model.EventStatusApproved

	title := "New Title"
	updated := pendingEvent()
	updated.Title = title
	updated.Status = model.EventStatusApproved

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(approved, nil)
	f.events.EXPECT().Update(ctx, int64(42), gomock.Any()).Return(updated, nil)
	f.events.EXPECT().SetStatus(ctx, int64(42), model.EventStatusPending).Return(nil)

	event, err := f.svc.Update(ctx, 42, organizerSession(), model.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusPending, event.Status)
}

func TestEventService_Update_PendingStaysPending(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	title := "New Title"
	updated := pendingEvent()
	updated.Title = title

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil)
	f.events.EXPECT().Update(ctx, int64(42), gomock.Any()).Return(updated, nil)

	event, err := f.svc.Update(ctx, 42, organizerSession(), model.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusPending, event.Status)
}

func TestEventService_Decide_ApproveNotifiesOrganizer(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	organizer := activeUser()
	organizer.ID = 9

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil)
	f.events.EXPECT().SetStatus(ctx, int64(42), model.EventStatusApproved).Return(nil)
	f.users.EXPECT().GetByID(ctx, int64(9)).Return(organizer, nil)

	event, err := f.svc.Decide(ctx, 42, true)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusApproved, event.Status)

	f.notifier.Wait()
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, "approved")
}

func TestEventService_Decide_Reject(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	organizer := activeUser()
	organizer.ID = 9

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil)
	f.events.EXPECT().SetStatus(ctx, int64(42), model.EventStatusRejected).Return(nil)
	f.users.EXPECT().GetByID(ctx, int64(9)).Return(organizer, nil)

	event, err := f.svc.Decide(ctx, 42, false)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusRejected, event.Status)
}

func TestEventService_Decide_Idempotent(t *testing.T) {
	t.Parallel()
	f := newEventFixture(t)
	ctx := context.Background()

	approved := pendingEvent()
	approved.Status = model.EventStatusApproved
	f.events.EXPECT().GetByID(ctx, int64(42)).Return(approved, nil)

	// Already approved: no status write, no email.
	event, err := f.svc.Decide(ctx, 42, true)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusApproved, event.Status)

	f.notifier.Wait()
	assert.Empty(t, f.mailer.Sent())
}
