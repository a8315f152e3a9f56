package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const serviceName = "pomotrack-apiserver"

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthRouter registers the unauthenticated info and liveness routes.
func HealthRouter(r chi.Router, check HealthCheck) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{
			"service": serviceName,
			"status":  "ok",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				slog.Default().ErrorContext(r.Context(), "health check failed",
					"operation", "health",
					"outcome", "failure",
					"request_id", middleware.GetReqID(r.Context()),
					"error", err.Error(),
				)
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
