package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pomotrack/apiserver/internal/services"
	"github.com/pomotrack/apiserver/internal/session"
)

// RequireSession resolves the session cookie and injects the user id into the
// request context. Requests without a valid session get 401.
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.Resolve(r)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) ||
					errors.Is(err, session.ErrInvalidSession) ||
					errors.Is(err, session.ErrRevoked) {
					err = services.ErrUnauthenticated
				}
				writeServiceError(w, r, "session_resolve", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.UserID)))
		})
	}
}

// Recover turns panics into the error envelope. A panic carrying an error
// known to mapError keeps that error's status.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Default().ErrorContext(r.Context(), "panic recovered",
				"operation", "http_panic_recovery",
				"outcome", "failure",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
			)
			status, message := http.StatusInternalServerError, "internal server error"
			if err, ok := rec.(error); ok {
				status, message = mapError(err)
			}
			writeError(w, status, message)
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		outcome := "success"
		if statusCode >= 400 {
			outcome = "failure"
		}

		fields := []any{
			"operation", "http_request",
			"outcome", outcome,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", statusCode,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		switch {
		case statusCode >= 500:
			slog.Default().ErrorContext(r.Context(), "http request completed", fields...)
		case statusCode >= 400:
			slog.Default().WarnContext(r.Context(), "http request completed", fields...)
		default:
			slog.Default().InfoContext(r.Context(), "http request completed", fields...)
		}
	})
}

// NotFound answers unmatched routes and methods with the error envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "route not found")
}
