// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/campuslife/campushub/internal/core (interfaces: RegistrationRepository)
//
// Generated by this command:
//
//	mockgen -package=mocks -destination=registration_repository_mock.go github.com/campuslife/campushub/internal/core RegistrationRepository
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	model "github.com/campuslife/campushub/internal/domain/model"
	gomock "go.uber.org/mock/gomock"
)

// MockRegistrationRepository is a mock of RegistrationRepository interface.
type MockRegistrationRepository struct {
	ctrl     *gomock.Controller
	recorder *MockRegistrationRepositoryMockRecorder
	isgomock struct{}
}

// MockRegistrationRepositoryMockRecorder is the mock recorder for MockRegistrationRepository.
type MockRegistrationRepositoryMockRecorder struct {
	mock *MockRegistrationRepository
}

// NewMockRegistrationRepository creates a new mock instance.
func NewMockRegistrationRepository(ctrl *gomock.Controller) *MockRegistrationRepository {
	mock := &MockRegistrationRepository{ctrl: ctrl}
	mock.recorder = &MockRegistrationRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRegistrationRepository) EXPECT() *MockRegistrationRepositoryMockRecorder {
	return m.recorder
}

// Cancel mocks base method.
func (m *MockRegistrationRepository) Cancel(ctx context.Context, eventID, userID int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Cancel", ctx, eventID, userID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Cancel indicates an expected call of Cancel.
func (mr *MockRegistrationRepositoryMockRecorder) Cancel(ctx, eventID, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Cancel", reflect.TypeOf((*MockRegistrationRepository)(nil).Cancel), ctx, eventID, userID)
}

// CountConfirmed mocks base method.
func (m *MockRegistrationRepository) CountConfirmed(ctx context.Context, eventID int64) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CountConfirmed", ctx, eventID)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CountConfirmed indicates an expected call of CountConfirmed.
func (mr *MockRegistrationRepositoryMockRecorder) CountConfirmed(ctx, eventID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CountConfirmed", reflect.TypeOf((*MockRegistrationRepository)(nil).CountConfirmed), ctx, eventID)
}

// Create mocks base method.
func (m *MockRegistrationRepository) Create(ctx context.Context, eventID, userID int64, ticketCode string) (*model.Registration, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, eventID, userID, ticketCode)
	ret0, _ := ret[0].(*model.Registration)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Create indicates an expected call of Create.
func (mr *MockRegistrationRepositoryMockRecorder) Create(ctx, eventID, userID, ticketCode any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockRegistrationRepository)(nil).Create), ctx, eventID, userID, ticketCode)
}

// GetForUserAndEvent mocks base method.
func (m *MockRegistrationRepository) GetForUserAndEvent(ctx context.Context, eventID, userID int64) (*model.Registration, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetForUserAndEvent", ctx, eventID, userID)
	ret0, _ := ret[0].(*model.Registration)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetForUserAndEvent indicates an expected call of GetForUserAndEvent.
func (mr *MockRegistrationRepositoryMockRecorder) GetForUserAndEvent(ctx, eventID, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetForUserAndEvent", reflect.TypeOf((*MockRegistrationRepository)(nil).GetForUserAndEvent), ctx, eventID, userID)
}

// ListForEvent mocks base method.
func (m *MockRegistrationRepository) ListForEvent(ctx context.Context, eventID int64) ([]*model.Registration, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListForEvent", ctx, eventID)
	ret0, _ := ret[0].([]*model.Registration)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListForEvent indicates an expected call of ListForEvent.
func (mr *MockRegistrationRepositoryMockRecorder) ListForEvent(ctx, eventID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListForEvent", reflect.TypeOf((*MockRegistrationRepository)(nil).ListForEvent), ctx, eventID)
}

// ListForUser mocks base method.
func (m *MockRegistrationRepository) ListForUser(ctx context.Context, userID int64) ([]*model.RegistrationWithEvent, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListForUser", ctx, userID)
	ret0, _ := ret[0].([]*model.RegistrationWithEvent)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListForUser indicates an expected call of ListForUser.
func (mr *MockRegistrationRepositoryMockRecorder) ListForUser(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListForUser", reflect.TypeOf((*MockRegistrationRepository)(nil).ListForUser), ctx, userID)
}
