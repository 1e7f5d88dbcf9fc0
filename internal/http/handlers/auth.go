package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/achi131830/transaction-tracker-postgres/internal/auth"
	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/middleware"
	"github.com/achi131830/transaction-tracker-postgres/internal/models"
)

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authenticator auth.Authenticator, tokens *auth.JWTManager) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, tokens: tokens}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authenticator.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			respond.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Registration failed", "username", req.Username, "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	h.respondSession(w, user, "registered")
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username)
		respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	h.respondSession(w, user, "logged in")
}

// handleMe returns the authenticated identity from the request context.
func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", userResponse{
		ID:       middleware.GetUserID(r.Context()),
		Username: middleware.GetUsername(r.Context()),
	})
}

func (h *AuthHandler) respondSession(w http.ResponseWriter, user *models.User, message string) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, message, sessionResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Username: user.Username},
	})
}
