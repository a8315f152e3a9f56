package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pomotrack/apiserver/internal/services"
	"github.com/pomotrack/apiserver/internal/session"
)

// AuthHandler provides signup, login, logout and session status endpoints.
type AuthHandler struct {
	userService *services.UserService
	sessions    *session.Manager
}

func NewAuthHandler(userService *services.UserService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, sessions *session.Manager, requireSession func(http.Handler) http.Handler) {
	handler := NewAuthHandler(userService, sessions)

	r.Post("/signup", handler.Signup)
	r.With(LegacyQuery).Get("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.With(LegacyQuery).Get("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Get("/logout", handler.Logout)
	r.With(requireSession).Get("/auth/status", handler.Status)
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, "signup", err)
		return
	}

	user, err := h.userService.Signup(r.Context(), req.Name, req.Password)
	if err != nil {
		writeServiceError(w, r, "signup", err)
		return
	}
	if err := h.sessions.Issue(w, user.ID); err != nil {
		writeServiceError(w, r, "signup", err)
		return
	}

	writeSuccess(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Name, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}
	if err := h.sessions.Issue(w, user.ID); err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

// Logout clears the session cookie. It succeeds without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		writeServiceError(w, r, "logout", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// Status returns the user behind the current session.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "auth_status", err)
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			err = services.ErrUnauthenticated
		}
		writeServiceError(w, r, "auth_status", err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}
