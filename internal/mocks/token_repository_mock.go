// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/campuslife/campushub/internal/core (interfaces: TokenRepository)
//
// Generated by this command:
//
//	mockgen -package=mocks -destination=token_repository_mock.go github.com/campuslife/campushub/internal/core TokenRepository
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"
	time "time"

	model "github.com/campuslife/campushub/internal/domain/model"
	gomock "go.uber.org/mock/gomock"
)

// MockTokenRepository is a mock of TokenRepository interface.
type MockTokenRepository struct {
	ctrl     *gomock.Controller
	recorder *MockTokenRepositoryMockRecorder
	isgomock struct{}
}

// MockTokenRepositoryMockRecorder is the mock recorder for MockTokenRepository.
type MockTokenRepositoryMockRecorder struct {
	mock *MockTokenRepository
}

// NewMockTokenRepository creates a new mock instance.
func NewMockTokenRepository(ctrl *gomock.Controller) *MockTokenRepository {
	mock := &MockTokenRepository{ctrl: ctrl}
	mock.recorder = &MockTokenRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTokenRepository) EXPECT() *MockTokenRepositoryMockRecorder {
	return m.recorder
}

// Consume mocks base method.
func (m *MockTokenRepository) Consume(ctx context.Context, tokenHash string, purpose model.TokenPurpose) (*model.AuthToken, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Consume", ctx, tokenHash, purpose)
	ret0, _ := ret[0].(*model.AuthToken)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Consume indicates an expected call of Consume.
func (mr *MockTokenRepositoryMockRecorder) Consume(ctx, tokenHash, purpose any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Consume", reflect.TypeOf((*MockTokenRepository)(nil).Consume), ctx, tokenHash, purpose)
}

// Issue mocks base method.
func (m *MockTokenRepository) Issue(ctx context.Context, userID int64, purpose model.TokenPurpose, tokenHash string) (*model.AuthToken, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Issue", ctx, userID, purpose, tokenHash)
	ret0, _ := ret[0].(*model.AuthToken)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Issue indicates an expected call of Issue.
func (mr *MockTokenRepositoryMockRecorder) Issue(ctx, userID, purpose, tokenHash any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Issue", reflect.TypeOf((*MockTokenRepository)(nil).Issue), ctx, userID, purpose, tokenHash)
}

// PurgeExpired mocks base method.
func (m *MockTokenRepository) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PurgeExpired", ctx, olderThan)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// PurgeExpired indicates an expected call of PurgeExpired.
func (mr *MockTokenRepositoryMockRecorder) PurgeExpired(ctx, olderThan any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PurgeExpired", reflect.TypeOf((*MockTokenRepository)(nil).PurgeExpired), ctx, olderThan)
}
