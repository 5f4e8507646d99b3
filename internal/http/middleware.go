package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuthenticator resolves a session cookie value into a live session.
// The returned session may carry a rotated identifier.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// AuthMiddleware builds the authentication and role gates. Every gate runs
// the session through the lazy timeout check and re-issues the cookie when
// the identifier was rotated underneath it.
type AuthMiddleware struct {
	Auth    SessionAuthenticator
	Cookies CookieConfig
}

// RequireAuth rejects unauthenticated requests. Browser requests are sent to
// the login page with their original destination remembered for afterwards;
// API requests get a 401 envelope.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.resolveSession(w, r)
		if session == nil {
			m.denyUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
	})
}

// RequireRole rejects requests whose session does not meet the required role.
// Browser requests get a flash message and a redirect; API requests a 403.
func (m *AuthMiddleware) RequireRole(required domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := m.resolveSession(w, r)
			if session == nil {
				m.denyUnauthenticated(w, r)
				return
			}
			if !session.Role.Meets(required) {
				m.denyForbidden(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches the session when one exists and lets the request
// through either way. Public pages use it to greet signed-in users.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := m.resolveSession(w, r); session != nil {
			r = r.WithContext(SetSessionInContext(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// resolveSession authenticates the cookie-carried session identifier. When
// the gate rotated the identifier, the fresh one replaces the cookie before
// the handler runs.
func (m *AuthMiddleware) resolveSession(w http.ResponseWriter, r *http.Request) *domainauth.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := m.Auth.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		clearCookie(w, r, m.Cookies, sessionCookieName)
		return nil
	}

	if session.ID != cookie.Value {
		setSessionCookie(w, r, m.Cookies, *session)
	}
	return session
}

func (m *AuthMiddleware) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		setPostLoginRedirect(w, r, m.Cookies, safeRedirectPath(r.URL.RequestURI()))
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusUnauthorized, Envelope{
		Success: false,
		Message: "Please log in to continue.",
	})
}

func (m *AuthMiddleware) denyForbidden(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		SetFlash(w, r, m.Cookies, "You do not have permission to access that page.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusForbidden, Envelope{
		Success: false,
		Message: "You do not have permission to perform this action.",
	})
}

// IsBrowserRequest reports whether the request came from a browser rather
// than an API client. API routes live under /api/; everything else is judged
// by the Accept header.
func IsBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}
