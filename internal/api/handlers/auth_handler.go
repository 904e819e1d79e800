package handlers

import (
	"context"
	"net/http"

	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// AuthService defines the account operations used by the handler
type AuthService interface {
	Register(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	Me(ctx context.Context, userID string) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID string, update entities.ProfileUpdate) (*entities.User, error)
	VerifyMobile(ctx context.Context, userID string) (*entities.User, error)
	UpgradeToBusiness(ctx context.Context, userID string, input services.BusinessUpgrade) (*entities.User, error)
}

// AuthHandler handles registration, login and profile endpoints
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type authResponse struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

type userMessageResponse struct {
	Message string         `json:"message"`
	User    *entities.User `json:"user"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.service.Register(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, authResponse{User: result.User, Token: result.Token})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, authResponse{User: result.User, Token: result.Token})
}

// CheckEmail handles POST /api/auth/check-email
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	exists, err := h.service.CheckEmail(r.Context(), req.Email)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.Me(r.Context(), caller.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var update entities.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), caller.ID, update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// VerifyMobile handles PUT /api/auth/verify-mobile
func (h *AuthHandler) VerifyMobile(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.VerifyMobile(r.Context(), caller.ID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, userMessageResponse{Message: "Mobile verified successfully", User: user})
}

// UpgradeToBusiness handles PUT /api/auth/upgrade-business
func (h *AuthHandler) UpgradeToBusiness(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input services.BusinessUpgrade
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.service.UpgradeToBusiness(r.Context(), caller.ID, input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, userMessageResponse{
		Message: "Upgraded to business account. Pending verification.",
		User:    user,
	})
}
