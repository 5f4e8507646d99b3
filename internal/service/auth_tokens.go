package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/campuslife/campushub/internal/data"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// resetRequestedMessage is returned whether or not the email exists, so the
// endpoint cannot be used to probe for accounts.
const resetRequestedMessage = "If an account with that email exists, a reset link has been sent."

const badTokenMessage = "This link is invalid or has expired."

// issueToken mints a fresh random secret, stores its hash, and returns the
// plaintext for the outbound email. The plaintext is never persisted.
func (s *AuthService) issueToken(ctx context.Context, userID int64, purpose model.TokenPurpose) (string, error) {
	raw, hash, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if _, err := s.tokens.Issue(ctx, userID, purpose, hash); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return raw, nil
}

// generateToken returns a 256-bit random secret in hex and its SHA-256 hash.
func generateToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset issues a reset token and mails the link. The returned
// message is identical whether or not the email belongs to an account;
// internal failures on the unknown-email path are logged and swallowed for
// the same reason.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !validEmail(email) {
		return "", apperrors.ValidationField("email", "Enter a valid email address.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) || errors.Is(err, data.ErrUserNotFound) {
			return resetRequestedMessage, nil
		}
		s.logger.Error("password reset lookup", "error", err)
		return resetRequestedMessage, nil
	}
	if user.Status != model.UserStatusActive {
		s.logger.Info("password reset requested for suspended account", "user_id", user.ID)
		return resetRequestedMessage, nil
	}

	raw, err := s.issueToken(ctx, user.ID, model.TokenPurposeReset)
	if err != nil {
		s.logger.Error("issue reset token", "user_id", user.ID, "error", err)
		return resetRequestedMessage, nil
	}

	if s.notifier != nil {
		s.notifier.PasswordResetEmail(user.Email, user.FirstName, raw)
	}
	s.logger.Info("password reset requested", "user_id", user.ID)

	return resetRequestedMessage, nil
}

// ResetPassword redeems a mailed reset token and sets a new password. The
// token is consumed atomically: once this succeeds, the same token can never
// authorize a second reset. Expired, spent, and unknown tokens all produce
// the same generic error.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.Unauthorized(badTokenMessage)
	}
	if len(newPassword) < minPasswordLen {
		return apperrors.ValidationField("password",
			fmt.Sprintf("Password must be at least %d characters.", minPasswordLen))
	}

	consumed, err := s.tokens.Consume(ctx, hashToken(token), model.TokenPurposeReset)
	if err != nil {
		if errors.Is(err, data.ErrTokenNotUsable) || apperrors.IsNotFound(err) {
			return apperrors.Unauthorized(badTokenMessage)
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, consumed.UserID, hash); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", consumed.UserID)
	return nil
}

// ChangePassword sets a new password for a logged-in user. Unlike the reset
// flow, the caller proves knowledge of the current password instead of
// possession of a mailed token.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperrors.ValidationField("new_password",
			fmt.Sprintf("Password must be at least %d characters.", minPasswordLen))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(user.PasswordHash, currentPassword) {
		return apperrors.ValidationField("current_password", "Current password is incorrect.")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// VerifyEmail redeems a mailed verification token and flags the account's
// email as confirmed. Tokens are single-use like reset tokens.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.Unauthorized(badTokenMessage)
	}

	consumed, err := s.tokens.Consume(ctx, hashToken(token), model.TokenPurposeVerify)
	if err != nil {
		if errors.Is(err, data.ErrTokenNotUsable) || apperrors.IsNotFound(err) {
			return apperrors.Unauthorized(badTokenMessage)
		}
		return fmt.Errorf("consume verification token: %w", err)
	}

	if err := s.users.MarkEmailVerified(ctx, consumed.UserID); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	s.logger.Info("email verified", "user_id", consumed.UserID)
	return nil
}

// ResendVerification issues a fresh verification token for a signed-in user
// whose email is still unconfirmed.
func (s *AuthService) ResendVerification(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.EmailVerified {
		return apperrors.Validation("Your email address is already verified.")
	}

	raw, err := s.issueToken(ctx, user.ID, model.TokenPurposeVerify)
	if err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.VerificationEmail(user.Email, user.FirstName, raw)
	}
	return nil
}
