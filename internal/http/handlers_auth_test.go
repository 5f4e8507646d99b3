package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/campuslife/campushub/internal/service"
)

// stubAuthService implements AuthServiceInterface with overridable funcs.
type stubAuthService struct {
	registerFunc       func(context.Context, service.RegisterInput) (*model.User, error)
	loginFunc          func(context.Context, string, string, bool) (*service.LoginResult, error)
	logoutFunc         func(context.Context, string) error
	authenticateFunc   func(context.Context, string) (*domainauth.Session, error)
	requestResetFunc   func(context.Context, string) (string, error)
	resetPasswordFunc  func(context.Context, string, string) error
	changePasswordFunc func(context.Context, int64, string, string) error
	verifyEmailFunc    func(context.Context, string) error
	resendFunc         func(context.Context, int64) error
	updateProfileFunc  func(context.Context, int64, string, model.UpdateProfileParams) (*model.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	return s.registerFunc(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, identifier, password string, rememberMe bool) (*service.LoginResult, error) {
	return s.loginFunc(ctx, identifier, password, rememberMe)
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	if s.logoutFunc != nil {
		return s.logoutFunc(ctx, sessionID)
	}
	return nil
}

func (s *stubAuthService) Authenticate(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	return s.authenticateFunc(ctx, sessionID)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return s.requestResetFunc(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetPasswordFunc(ctx, token, newPassword)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	return s.changePasswordFunc(ctx, userID, currentPassword, newPassword)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.verifyEmailFunc(ctx, token)
}

func (s *stubAuthService) ResendVerification(ctx context.Context, userID int64) error {
	return s.resendFunc(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID int64, sessionID string, p model.UpdateProfileParams) (*model.User, error) {
	return s.updateProfileFunc(ctx, userID, sessionID, p)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthHandlers_Register(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		registerFunc: func(_ context.Context, in service.RegisterInput) (*model.User, error) {
			assert.Equal(t, "jdoe", in.Username)
			return &model.User{ID: 7, Username: "jdoe"}, nil
		},
	}}

	body := `{"username":"jdoe","email":"jdoe@campus.edu","password":"secret123","first_name":"Jane","last_name":"Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, env.Message, "Check your email")
}

func TestAuthHandlers_Register_Conflict(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		registerFunc: func(context.Context, service.RegisterInput) (*model.User, error) {
			return nil, apperrors.Conflict("An account with that username or email already exists.")
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"username":"jdoe"}`))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
}

func TestAuthHandlers_Register_BadJSON(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlers_Login_SetsCookieAndRedirect(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-new")
	h := &AuthHandlers{Svc: &stubAuthService{
		loginFunc: func(_ context.Context, identifier, password string, _ bool) (*service.LoginResult, error) {
			assert.Equal(t, "jdoe", identifier)
			assert.Equal(t, "secret123", password)
			return &service.LoginResult{Session: sess, RedirectPath: "/dashboard"}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier":"jdoe","password":"secret123"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "sess-new", sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, "/dashboard", data["redirect_to"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "jdoe", user["username"])
	// The session view must never expose credential material.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandlers_Login_StoredRedirectWins(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-new")
	h := &AuthHandlers{Svc: &stubAuthService{
		loginFunc: func(context.Context, string, string, bool) (*service.LoginResult, error) {
			return &service.LoginResult{Session: sess, RedirectPath: "/dashboard"}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier":"jdoe","password":"secret123"}`))
	req.AddCookie(&http.Cookie{Name: redirectCookieName, Value: "/events/42"})
	w := httptest.NewRecorder()
	h.Login(w, req)

	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, "/events/42", data["redirect_to"])
}

func TestAuthHandlers_Login_Failure(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		loginFunc: func(context.Context, string, string, bool) (*service.LoginResult, error) {
			return nil, apperrors.Unauthorized("Invalid username/email or password.")
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier":"ghost","password":"nope00"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthHandlers_Logout_ClearsCookie(t *testing.T) {
	t.Parallel()
	loggedOut := ""
	h := &AuthHandlers{Svc: &stubAuthService{
		logoutFunc: func(_ context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", loggedOut)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestAuthHandlers_Logout_WithoutSession(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandlers_Status(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-1")
	h := &AuthHandlers{Svc: &stubAuthService{
		authenticateFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			assert.Equal(t, "sess-1", sessionID)
			return &sess, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, true, data["authenticated"])
	// Same session ID: no cookie churn.
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthHandlers_Status_RotatedSession(t *testing.T) {
	t.Parallel()
	rotated := sessionFixture("sess-2")
	h := &AuthHandlers{Svc: &stubAuthService{
		authenticateFunc: func(context.Context, string) (*domainauth.Session, error) {
			return &rotated, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sess-2", cookies[0].Value)
}

func TestAuthHandlers_Status_Anonymous(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, false, data["authenticated"])
}

func TestAuthHandlers_Status_ExpiredSessionClearsCookie(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		authenticateFunc: func(context.Context, string) (*domainauth.Session, error) {
			return nil, apperrors.Unauthorized("Your session has expired. Please log in again.")
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-stale"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]any)
	assert.Equal(t, false, data["authenticated"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthHandlers_RequestPasswordReset(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		requestResetFunc: func(_ context.Context, email string) (string, error) {
			assert.Equal(t, "jdoe@campus.edu", email)
			return "If an account with that email exists, a reset link has been sent.", nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/request-password-reset",
		strings.NewReader(`{"email":"jdoe@campus.edu"}`))
	w := httptest.NewRecorder()
	h.RequestPasswordReset(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Message, "If an account with that email exists")
}

func TestAuthHandlers_ResetPassword_BadToken(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		resetPasswordFunc: func(context.Context, string, string) error {
			return apperrors.Unauthorized("This link is invalid or has expired.")
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password",
		strings.NewReader(`{"token":"deadbeef","password":"newsecret"}`))
	w := httptest.NewRecorder()
	h.ResetPassword(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlers_ChangePassword_UsesSessionUser(t *testing.T) {
	t.Parallel()
	var gotUserID int64
	h := &AuthHandlers{Svc: &stubAuthService{
		changePasswordFunc: func(_ context.Context, userID int64, _, _ string) error {
			gotUserID = userID
			return nil
		},
	}}

	sess := sessionFixture("sess-1")
	req := httptest.NewRequest(http.MethodPost, "/auth/change-password",
		strings.NewReader(`{"current_password":"old123","new_password":"new123"}`))
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	w := httptest.NewRecorder()
	h.ChangePassword(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), gotUserID)
}

func TestAuthHandlers_VerifyEmail(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		verifyEmailFunc: func(_ context.Context, token string) error {
			assert.Equal(t, "tok123", token)
			return nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email?token=tok123", nil)
	w := httptest.NewRecorder()
	h.VerifyEmail(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandlers_UpdateProfile_ValidationErrorsCarryFields(t *testing.T) {
	t.Parallel()
	h := &AuthHandlers{Svc: &stubAuthService{
		updateProfileFunc: func(context.Context, int64, string, model.UpdateProfileParams) (*model.User, error) {
			return nil, apperrors.ValidationField("email", "That email address is already in use.")
		},
	}}

	sess := sessionFixture("sess-1")
	req := httptest.NewRequest(http.MethodPatch, "/api/me/profile",
		strings.NewReader(`{"email":"taken@campus.edu"}`))
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthHandlers_UpdateProfile_PassesSessionCookie(t *testing.T) {
	t.Parallel()
	var gotSessionID string
	h := &AuthHandlers{Svc: &stubAuthService{
		updateProfileFunc: func(_ context.Context, _ int64, sessionID string, p model.UpdateProfileParams) (*model.User, error) {
			gotSessionID = sessionID
			require.NotNil(t, p.Department)
			return &model.User{ID: 7, Department: *p.Department}, nil
		},
	}}

	sess := sessionFixture("sess-1")
	req := httptest.NewRequest(http.MethodPatch, "/api/me/profile",
		strings.NewReader(`{"department":"Physics"}`))
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", gotSessionID)
}
