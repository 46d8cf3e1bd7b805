package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/goreporte/internal/adapter/http/dto"
	"github.com/iho/goreporte/internal/domain"
)

// maxLoginBody bounds the login request body.
const maxLoginBody = 4 << 10

// AuthService defines the behavior needed by AuthHandler.
type AuthService interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Token, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token, err := h.auth.Authenticate(r.Context(), req.ToCredentials())
	if err != nil {
		status := mapDomainError(err)
		if status == http.StatusInternalServerError {
			writeError(w, status, "login failed", "")
			return
		}
		writeError(w, status, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginFromDomain(token))
}
