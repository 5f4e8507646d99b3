package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	apperrors "github.com/campuslife/campushub/internal/errors"
)

// stubAuthenticator drives the auth middleware in tests.
type stubAuthenticator struct {
	session *domainauth.Session
	err     error
	calls   int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _ string) (*domainauth.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func sessionFixture(id string) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    7,
		Username:  "jdoe",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jdoe@campus.edu",
		Role:      domainauth.RoleUser,
	}
}

func okHandler(sawSession *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserSessionFromContext(r.Context()); ok {
			*sawSession = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_APIRequestGets401(t *testing.T) {
	t.Parallel()
	mw := &AuthMiddleware{Auth: &stubAuthenticator{}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	w := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, saw)
	assert.Contains(t, w.Body.String(), "Please log in to continue.")
}

func TestRequireAuth_BrowserRedirectsToLoginAndRemembersTarget(t *testing.T) {
	t.Parallel()
	mw := &AuthMiddleware{Auth: &stubAuthenticator{}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=upcoming", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	assert.False(t, saw)

	var redirect *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == redirectCookieName {
			redirect = c
		}
	}
	require.NotNil(t, redirect)
	assert.Equal(t, "/dashboard?tab=upcoming", redirect.Value)
}

func TestRequireAuth_ValidSessionPassesThrough(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-1")
	mw := &AuthMiddleware{Auth: &stubAuthenticator{session: &sess}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saw)
	// Cookie unchanged, so nothing was re-issued.
	assert.Empty(t, w.Result().Cookies())
}

func TestRequireAuth_RotatedSessionReissuesCookie(t *testing.T) {
	t.Parallel()
	rotated := sessionFixture("sess-2")
	mw := &AuthMiddleware{Auth: &stubAuthenticator{session: &rotated}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Equal(t, "sess-2", cookies[0].Value)
}

func TestRequireAuth_ExpiredSessionClearsCookie(t *testing.T) {
	t.Parallel()
	mw := &AuthMiddleware{
		Auth:    &stubAuthenticator{err: apperrors.Unauthorized("Your session has expired. Please log in again.")},
		Cookies: CookieConfig{},
	}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-stale"})
	w := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRequireRole_InsufficientRole(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-1") // plain user
	mw := &AuthMiddleware{Auth: &stubAuthenticator{session: &sess}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	mw.RequireRole(domainauth.RoleAdmin)(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, saw)
}

func TestRequireRole_BrowserForbiddenRedirectsWithFlash(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-1")
	mw := &AuthMiddleware{Auth: &stubAuthenticator{session: &sess}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	mw.RequireRole(domainauth.RoleAdmin)(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	var flash *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookieName {
			flash = c
		}
	}
	require.NotNil(t, flash)
}

func TestRequireRole_AdminMeetsOrganizer(t *testing.T) {
	t.Parallel()
	sess := sessionFixture("sess-1")
	sess.Role = domainauth.RoleAdmin
	mw := &AuthMiddleware{Auth: &stubAuthenticator{session: &sess}, Cookies: CookieConfig{}}

	saw := false
	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	mw.RequireRole(domainauth.RoleOrganizer)(okHandler(&saw)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saw)
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()

	// Anonymous request falls through without a session.
	mw := &AuthMiddleware{Auth: &stubAuthenticator{}, Cookies: CookieConfig{}}
	saw := false
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	mw.OptionalAuth(okHandler(&saw)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, saw)

	// A cookie-carrying request gets the session attached.
	sess := sessionFixture("sess-1")
	mw = &AuthMiddleware{Auth: &stubAuthenticator{session: &sess}, Cookies: CookieConfig{}}
	saw = false
	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w = httptest.NewRecorder()
	mw.OptionalAuth(okHandler(&saw)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saw)
}

func TestIsBrowserRequest(t *testing.T) {
	t.Parallel()

	api := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	api.Header.Set("Accept", "text/html")
	assert.False(t, IsBrowserRequest(api))

	browser := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	browser.Header.Set("Accept", "text/html,application/xhtml+xml")
	assert.True(t, IsBrowserRequest(browser))

	jsonClient := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	jsonClient.Header.Set("Accept", "application/json")
	assert.False(t, IsBrowserRequest(jsonClient))

	bare := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.True(t, IsBrowserRequest(bare))
}
