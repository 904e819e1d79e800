package handlers

import (
	"context"
	"net/http"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// ModerationService defines the admin operations used by the handler
type ModerationService interface {
	PendingCenters(ctx context.Context) ([]*entities.Center, error)
	ApprovedCenters(ctx context.Context) ([]*entities.Center, error)
	Approve(ctx context.Context, adminID, id string) (*entities.Center, error)
	Reject(ctx context.Context, id, reason string) (*entities.Center, error)
	EditPending(ctx context.Context, id string, update entities.CenterUpdate) (*entities.Center, error)
	DeleteCenter(ctx context.Context, id string) error
	Reports(ctx context.Context) ([]*entities.Report, error)
	MarkReportReviewed(ctx context.Context, id string) (*entities.Report, error)
	SetLicenseVerified(ctx context.Context, userID string, verified bool) (*entities.User, error)
	Users(ctx context.Context) ([]*entities.User, error)
}

// AdminHandler handles the moderation endpoints. Every route is admin only.
type AdminHandler struct {
	service ModerationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service ModerationService) *AdminHandler {
	return &AdminHandler{service: service}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type licenseVerificationRequest struct {
	Verified bool `json:"verified"`
}

// PendingCenters handles GET /api/admin/centers/pending
func (h *AdminHandler) PendingCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.service.PendingCenters(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, centers)
}

// ApprovedCenters handles GET /api/admin/centers/approved
func (h *AdminHandler) ApprovedCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.service.ApprovedCenters(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, centers)
}

// ApproveCenter handles PUT /api/admin/centers/{id}/approve
func (h *AdminHandler) ApproveCenter(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}

	center, err := h.service.Approve(r.Context(), admin.ID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, center)
}

// RejectCenter handles PUT /api/admin/centers/{id}/reject
func (h *AdminHandler) RejectCenter(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	center, err := h.service.Reject(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Center *entities.Center `json:"center"`
		Reason string           `json:"reason"`
	}{Center: center, Reason: center.RejectionReason})
}

// EditCenter handles PUT /api/admin/centers/{id}
func (h *AdminHandler) EditCenter(w http.ResponseWriter, r *http.Request) {
	var update entities.CenterUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	center, err := h.service.EditPending(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, center)
}

// DeleteCenter handles DELETE /api/admin/centers/{id}
func (h *AdminHandler) DeleteCenter(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCenter(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Center deleted"})
}

// ListReports handles GET /api/admin/reports
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.Reports(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// ReviewReport handles PUT /api/admin/reports/{id}/reviewed
func (h *AdminHandler) ReviewReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.MarkReportReviewed(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Users(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// SetLicenseVerification handles PUT /api/admin/users/{id}/license
func (h *AdminHandler) SetLicenseVerification(w http.ResponseWriter, r *http.Request) {
	var req licenseVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.SetLicenseVerified(r.Context(), r.PathValue("id"), req.Verified)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	message := "Verification revoked"
	if req.Verified {
		message = "Business verified"
	}
	respondWithJSON(w, http.StatusOK, userMessageResponse{Message: message, User: user})
}
