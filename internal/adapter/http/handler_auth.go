package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/usecase"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// AuthService authenticates users and resolves the current session
type AuthService interface {
	Login(ctx context.Context, req usecase.LoginRequest) (*usecase.LoginResponse, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterPublicRoutes registers the routes that need no token
func (h *AuthHandler) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", h.Login).Methods("POST")
}

// RegisterRoutes registers the routes behind authentication
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	router.HandleFunc("/auth/me", h.Me).Methods("GET")
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	response, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, response)
}

// Logout acknowledges the logout. Tokens are stateless, so the client is
// responsible for discarding its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.NewUnauthorized("authentication required"))
		return
	}

	user, err := h.auth.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}
