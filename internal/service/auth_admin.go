package service

import (
	"context"
	"fmt"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// Admin-side user management. Route middleware enforces the admin role before
// any of these run; the checks here are about the operation itself, not the
// caller.

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

// AssignRole moves a user to one of the fixed roles. An admin cannot change
// their own role; demoting the last admin by accident is an easy way to lock
// everyone out.
func (s *AuthService) AssignRole(ctx context.Context, actorID, userID int64, role domainauth.Role) error {
	if !domainauth.ValidRole(role) {
		return apperrors.ValidationField("role", "Role must be one of user, organizer, admin.")
	}
	if actorID == userID {
		return apperrors.Validation("You cannot change your own role.")
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	// The target's live session picks up the new role on their next request.
	s.logger.Info("role assigned", "actor_id", actorID, "user_id", userID, "role", role)
	return nil
}

// SetUserStatus suspends or reactivates an account. A suspended user's live
// sessions are not swept here; the authentication gate discards them on their
// next request.
func (s *AuthService) SetUserStatus(ctx context.Context, actorID, userID int64, status model.UserStatus) error {
	if !status.Valid() {
		return apperrors.ValidationField("status", "Status must be active or suspended.")
	}
	if actorID == userID {
		return apperrors.Validation("You cannot suspend your own account.")
	}

	if err := s.users.SetStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	s.logger.Info("user status changed", "actor_id", actorID, "user_id", userID, "status", status)
	return nil
}

// SearchUsers pages through accounts matching a partial name, username, or
// email, optionally narrowed to one role.
func (s *AuthService) SearchUsers(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultUserPageSize
	}
	if opts.Limit > maxUserPageSize {
		opts.Limit = maxUserPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Role != nil && !domainauth.ValidRole(*opts.Role) {
		return nil, apperrors.ValidationField("role", "Unknown role filter.")
	}

	users, err := s.users.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// GetUser loads a single account for the admin detail view.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
