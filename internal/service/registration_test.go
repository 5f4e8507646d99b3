package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campuslife/campushub/internal/data"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/campuslife/campushub/internal/mocks"
	mocksauth "github.com/campuslife/campushub/internal/mocks/auth"
)

type registrationFixture struct {
	registrations *mocks.MockRegistrationRepository
	events        *mocks.MockEventRepository
	users         *mocks.MockUserRepository
	mailer        *mocksauth.RecordingMailer
	notifier      *Notifier
	clock         *data.FixedTimeProvider
	svc           *RegistrationService
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &registrationFixture{
		registrations: mocks.NewMockRegistrationRepository(ctrl),
		events:        mocks.NewMockEventRepository(ctrl),
		users:         mocks.NewMockUserRepository(ctrl),
		mailer:        mocksauth.NewRecordingMailer(),
		clock:         data.NewFixedTimeProvider(testBaseTime),
	}
	f.notifier = NewNotifier(NotifierOptions{
		Mailer:  f.mailer,
		BaseURL: "http://localhost:8080",
	})
	f.svc = MustNewRegistrationService(RegistrationServiceOptions{
		Registrations: f.registrations,
		Events:        f.events,
		Users:         f.users,
		Notifier:      f.notifier,
		TimeProvider:  f.clock,
	})
	return f
}

func approvedEvent() *model.Event {
	e := pendingEvent()
	e.Status = model.EventStatusApproved
	return e
}

func confirmedRegistration() *model.Registration {
	return &model.Registration{
		ID:         11,
		EventID:    42,
		UserID:     7,
		TicketCode: "ticket-abc",
		Status:     model.RegistrationStatusConfirmed,
	}
}

func TestRegistrationService_Register(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(approvedEvent(), nil)
	f.registrations.EXPECT().
		Create(ctx, int64(42), int64(7), gomock.Any()).
		Return(confirmedRegistration(), nil)
	f.users.EXPECT().GetByID(ctx, int64(7)).Return(activeUser(), nil)

	reg, err := f.svc.Register(ctx, 42, 7)
	require.NoError(t, err)
	assert.Equal(t, "ticket-abc", reg.TicketCode)

	f.notifier.Wait()
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTMLBody, "ticket-abc")
}

func TestRegistrationService_Register_PendingEventClosed(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(pendingEvent(), nil)

	_, err := f.svc.Register(ctx, 42, 7)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestRegistrationService_Register_StartedEventClosed(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	started := approvedEvent()
	started.StartsAt = testBaseTime.Add(-time.Minute)

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(started, nil)

	_, err := f.svc.Register(ctx, 42, 7)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestRegistrationService_Register_EventFull(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(approvedEvent(), nil)
	f.registrations.EXPECT().
		Create(ctx, int64(42), int64(7), gomock.Any()).
		Return(nil, data.ErrEventFull)

	_, err := f.svc.Register(ctx, 42, 7)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "full")
}

func TestRegistrationService_Register_Duplicate(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.events.EXPECT().GetByID(ctx, int64(42)).Return(approvedEvent(), nil)
	f.registrations.EXPECT().
		Create(ctx, int64(42), int64(7), gomock.Any()).
		Return(nil, apperrors.Conflict("You are already registered for this event."))

	_, err := f.svc.Register(ctx, 42, 7)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))

	f.notifier.Wait()
	assert.Empty(t, f.mailer.Sent())
}

func TestRegistrationService_Cancel(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.registrations.EXPECT().Cancel(ctx, int64(42), int64(7)).Return(nil)
	require.NoError(t, f.svc.Cancel(ctx, 42, 7))
}

func TestRegistrationService_Cancel_NotRegistered(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.registrations.EXPECT().Cancel(ctx, int64(42), int64(7)).Return(data.ErrRegistrationNotFound)

	err := f.svc.Cancel(ctx, 42, 7)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestRegistrationService_ListForUser(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.registrations.EXPECT().
		ListForUser(ctx, int64(7)).
		Return([]*model.RegistrationWithEvent{
			{Registration: *confirmedRegistration(), EventTitle: "Spring Concert"},
		}, nil)

	regs, err := f.svc.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "Spring Concert", regs[0].EventTitle)
}

func TestRegistrationService_SeatsTaken(t *testing.T) {
	t.Parallel()
	f := newRegistrationFixture(t)
	ctx := context.Background()

	f.registrations.EXPECT().CountConfirmed(ctx, int64(42)).Return(137, nil)

	n, err := f.svc.SeatsTaken(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 137, n)
}
