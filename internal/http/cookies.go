package httpx

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
)

const (
	sessionCookieName  = "session_id"
	redirectCookieName = "post_login_redirect"
	flashCookieName    = "flash"
)

// CookieConfig carries the attributes shared by every cookie the app sets.
type CookieConfig struct {
	Domain string
	// SessionMaxAge mirrors the server-side idle window so the cookie and
	// the stored session age out together.
	SessionMaxAge time.Duration
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// setSessionCookie writes the session cookie. Called at login and again
// whenever the authentication gate rotates the session identifier.
func setSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig, sess domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
	})
}

// clearCookie expires a cookie immediately, mirroring the attributes used
// when setting it so deletion works across browsers.
func clearCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setPostLoginRedirect remembers where an unauthenticated browser was headed
// so the login handler can send it back there afterwards.
func setPostLoginRedirect(w http.ResponseWriter, r *http.Request, cfg CookieConfig, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     redirectCookieName,
		Value:    path,
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
}

// popPostLoginRedirect returns the stored redirect target and clears the
// cookie. Returns "" when none was stored or the stored value is unsafe.
func popPostLoginRedirect(w http.ResponseWriter, r *http.Request, cfg CookieConfig) string {
	cookie, err := r.Cookie(redirectCookieName)
	if err != nil {
		return ""
	}
	clearCookie(w, r, cfg, redirectCookieName)

	candidate := safeRedirectPath(cookie.Value)
	if candidate == "/" && cookie.Value != "/" {
		return ""
	}
	return candidate
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	// Reject protocol-relative ("//evil.com") forms that url.Parse treats as paths.
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return "/"
	}
	return candidate
}

// SetFlash stores a one-shot user-visible message, e.g. "access denied".
// The value is base64-encoded because cookie values cannot carry spaces.
func SetFlash(w http.ResponseWriter, r *http.Request, cfg CookieConfig, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// PopFlash returns the pending flash message, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request, cfg CookieConfig) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	clearCookie(w, r, cfg, flashCookieName)

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
