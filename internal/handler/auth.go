package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aminulbx/genboard/internal/auth"
	"github.com/aminulbx/genboard/internal/model"
)

// requireUser pulls the authenticated user ID out of the request context.
// The auth middleware guarantees it on protected routes; the 401 here only
// fires if a handler is mounted outside that group by mistake.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
	}
	return userID, ok
}

type authService interface {
	Login(ctx context.Context, email string) (*model.User, string, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type AuthHandler struct {
	service authService
	logger  *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// HandleLogin signs a user in by email, creating the account on first sight.
//
// POST /api/auth/login
// body: {"email": "dev@example.com"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

// HandleMe returns the authenticated user's account.
//
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
