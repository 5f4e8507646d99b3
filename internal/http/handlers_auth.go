package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	"github.com/campuslife/campushub/internal/service"
)

// AuthServiceInterface defines the auth service operations the handlers use.
type AuthServiceInterface interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, identifier, password string, rememberMe bool) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, sessionID string) (*domainauth.Session, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID int64) error
	UpdateProfile(ctx context.Context, userID int64, sessionID string, p model.UpdateProfileParams) (*model.User, error)
}

// AuthHandlers provides HTTP handlers for registration, login, and the
// password and profile flows.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies CookieConfig
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// sessionView is the session shape returned to clients. The password hash
// and internal timestamps never leave the server.
type sessionView struct {
	UserID      int64           `json:"user_id"`
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	Role        domainauth.Role `json:"role"`
}

func newSessionView(s domainauth.Session) sessionView {
	return sessionView{
		UserID:      s.UserID,
		Username:    s.Username,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		DisplayName: s.DisplayName(),
		Email:       s.Email,
		Role:        s.Role,
	}
}

// Register handles new account creation.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !DecodeJSON(w, r, &in) {
		return
	}

	user, err := h.Svc.Register(r.Context(), in)
	if err != nil {
		h.logger().InfoContext(r.Context(), "registration rejected", "error", err)
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Message: "Account created. Check your email to verify your address.",
		Data:    map[string]any{"user": user},
	})
}

// Login handles credential login.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	result, err := h.Svc.Login(r.Context(), in.Identifier, in.Password, in.RememberMe)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	setSessionCookie(w, r, h.Cookies, result.Session)

	// A destination stored before the login attempt wins over the
	// role-based default.
	redirectTo := result.RedirectPath
	if stored := popPostLoginRedirect(w, r, h.Cookies); stored != "" {
		redirectTo = stored
	}

	WriteSuccess(w, "Welcome back, "+result.Session.DisplayName()+".", map[string]any{
		"redirect_to": redirectTo,
		"user":        newSessionView(result.Session),
	})
}

// Logout destroys the session and expires its cookie. Safe to call without
// an active session.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	clearCookie(w, r, h.Cookies, sessionCookieName)
	// The remember-me cookie is an extension hook; clear it if some future
	// version set one.
	clearCookie(w, r, h.Cookies, "remember_token")

	WriteSuccess(w, "You have been logged out.", map[string]any{"redirect_to": "/"})
}

// Status reports whether the caller has a live session.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		WriteSuccess(w, "", map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		clearCookie(w, r, h.Cookies, sessionCookieName)
		WriteSuccess(w, "", map[string]any{"authenticated": false})
		return
	}
	if session.ID != cookie.Value {
		setSessionCookie(w, r, h.Cookies, *session)
	}

	WriteSuccess(w, "", map[string]any{
		"authenticated": true,
		"user":          newSessionView(*session),
	})
}

// RequestPasswordReset mails a reset link. The response is identical whether
// or not the address belongs to an account.
// POST /auth/request-password-reset.
func (h *AuthHandlers) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	message, err := h.Svc.RequestPasswordReset(r.Context(), in.Email)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, message, nil)
}

// ResetPassword redeems a mailed token for a new password.
// POST /auth/reset-password.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	if err := h.Svc.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Your password has been reset. You can now log in.", nil)
}

// ChangePassword lets a signed-in user rotate their password.
// POST /auth/change-password (authenticated).
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	if err := h.Svc.ChangePassword(r.Context(), session.UserID, in.CurrentPassword, in.NewPassword); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Your password has been changed.", nil)
}

// VerifyEmail redeems a mailed verification token.
// GET /auth/verify-email?token=<token>.
func (h *AuthHandlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.Svc.VerifyEmail(r.Context(), token); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Your email address has been verified.", nil)
}

// ResendVerification mails a fresh verification link to the signed-in user.
// POST /auth/resend-verification (authenticated).
func (h *AuthHandlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	if err := h.Svc.ResendVerification(r.Context(), session.UserID); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Verification email sent. Check your inbox.", nil)
}

// Me returns the signed-in user's session snapshot.
// GET /api/me (authenticated).
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	WriteSuccess(w, "", map[string]any{"user": newSessionView(*session)})
}

// UpdateProfile applies a partial profile update to the signed-in user.
// PATCH /api/me/profile (authenticated).
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var in model.UpdateProfileParams
	if !DecodeJSON(w, r, &in) {
		return
	}

	sessionID := ""
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	user, err := h.Svc.UpdateProfile(r.Context(), session.UserID, sessionID, in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteSuccess(w, "Profile updated.", map[string]any{"user": user})
}
