package httpx

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// HealthHandlers provides the admin system-health check, which actively
// pings the datastore and the session store.
type HealthHandlers struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// Check reports per-dependency health.
// GET /api/admin/health.
func (h *HealthHandlers) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"sessions": "ok",
	}
	healthy := true

	if h.DB == nil {
		checks["database"] = "not configured"
		healthy = false
	} else if err := h.DB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}

	if h.Redis == nil {
		checks["sessions"] = "not configured"
		healthy = false
	} else if err := h.Redis.Ping(ctx).Err(); err != nil {
		checks["sessions"] = err.Error()
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, Envelope{
		Success: healthy,
		Data:    map[string]any{"checks": checks},
	})
}
