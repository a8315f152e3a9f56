package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pomotrack/apiserver/internal/services"
)

const maxBodyBytes = 1 << 20

type contextKey string

const contextUserIDKey contextKey = "userID"

// Envelope is the response shape of every route.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

var errMalformedBody = errors.New("malformed request body")

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextUserIDKey, userID)
}

func userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextUserIDKey).(string)
	if !ok || userID == "" {
		return "", services.ErrUnauthenticated
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Error: message})
}

// writeServiceError maps err to a status and message, logs it, and writes
// the error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, message := mapError(err)
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", status,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "request failed", fields...)
	} else {
		slog.Default().WarnContext(r.Context(), "request rejected", fields...)
	}
	writeError(w, status, message)
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "malformed request body"
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, services.ErrDuplicate):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errMalformedBody
}
