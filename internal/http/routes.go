package httpx

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth          *service.AuthService
	Events        *service.EventService
	Registrations *service.RegistrationService

	// DB and Redis back the admin health check.
	DB    *sql.DB
	Redis redis.UniversalClient

	Cookies CookieConfig
	Logger  *slog.Logger // Optional
}

// NewRouter creates and configures the HTTP router. The returned handler
// already carries the recover, logging, and CSRF middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, Logger: logger}
	eventHandlers := &EventHandlers{Svc: services.Events}
	regHandlers := &RegistrationHandlers{Svc: services.Registrations}
	adminHandlers := &AdminHandlers{Users: services.Auth, Events: services.Events}
	healthHandlers := &HealthHandlers{DB: services.DB, Redis: services.Redis}

	authMW := &AuthMiddleware{Auth: services.Auth, Cookies: services.Cookies}

	registerAuthRoutes(mux, authHandlers, authMW)
	registerEventRoutes(mux, eventHandlers, regHandlers, authMW)
	registerAdminRoutes(mux, adminHandlers, healthHandlers, authMW)

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.Cookies.Domain})
	return Recover(logger)(Logging(logger)(csrf(mux)))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, mw *AuthMiddleware) {
	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/request-password-reset", h.RequestPasswordReset)
	mux.HandleFunc("POST /auth/reset-password", h.ResetPassword)
	mux.HandleFunc("GET /auth/verify-email", h.VerifyEmail)

	mux.Handle("POST /auth/change-password", mw.RequireAuth(http.HandlerFunc(h.ChangePassword)))
	mux.Handle("POST /auth/resend-verification", mw.RequireAuth(http.HandlerFunc(h.ResendVerification)))

	mux.Handle("GET /api/me", mw.RequireAuth(http.HandlerFunc(h.Me)))
	mux.Handle("PATCH /api/me/profile", mw.RequireAuth(http.HandlerFunc(h.UpdateProfile)))
}

func registerEventRoutes(mux *http.ServeMux, events *EventHandlers, regs *RegistrationHandlers, mw *AuthMiddleware) {
	// Public listings still resolve the session so organizers see their own
	// pending events on the detail page.
	mux.Handle("GET /api/events", mw.OptionalAuth(http.HandlerFunc(events.List)))
	mux.Handle("GET /api/events/{id}", mw.OptionalAuth(http.HandlerFunc(events.Get)))

	requireOrganizer := mw.RequireRole(domainauth.RoleOrganizer)
	mux.Handle("POST /api/events", requireOrganizer(http.HandlerFunc(events.Create)))
	mux.Handle("PATCH /api/events/{id}", requireOrganizer(http.HandlerFunc(events.Update)))
	mux.Handle("GET /api/events/mine", requireOrganizer(http.HandlerFunc(events.Mine)))
	mux.Handle("GET /api/events/{id}/attendees", requireOrganizer(http.HandlerFunc(regs.Attendees)))

	mux.Handle("POST /api/events/{id}/register", mw.RequireAuth(http.HandlerFunc(regs.Register)))
	mux.Handle("DELETE /api/events/{id}/register", mw.RequireAuth(http.HandlerFunc(regs.Cancel)))
	mux.Handle("GET /api/me/registrations", mw.RequireAuth(http.HandlerFunc(regs.Mine)))
}

func registerAdminRoutes(mux *http.ServeMux, admin *AdminHandlers, health *HealthHandlers, mw *AuthMiddleware) {
	requireAdmin := mw.RequireRole(domainauth.RoleAdmin)

	mux.Handle("GET /api/admin/users", requireAdmin(http.HandlerFunc(admin.SearchUsers)))
	mux.Handle("GET /api/admin/users/{id}", requireAdmin(http.HandlerFunc(admin.GetUser)))
	mux.Handle("PUT /api/admin/users/{id}/role", requireAdmin(http.HandlerFunc(admin.AssignRole)))
	mux.Handle("PUT /api/admin/users/{id}/status", requireAdmin(http.HandlerFunc(admin.SetStatus)))

	mux.Handle("GET /api/admin/events", requireAdmin(http.HandlerFunc(admin.ListEvents)))
	mux.Handle("POST /api/admin/events/{id}/approve", requireAdmin(http.HandlerFunc(admin.ApproveEvent)))
	mux.Handle("POST /api/admin/events/{id}/reject", requireAdmin(http.HandlerFunc(admin.RejectEvent)))

	mux.Handle("GET /api/admin/health", requireAdmin(http.HandlerFunc(health.Check)))
}
