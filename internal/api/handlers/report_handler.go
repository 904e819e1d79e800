package handlers

import (
	"context"
	"net/http"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// ReportService defines the report operations used by the handler
type ReportService interface {
	Create(ctx context.Context, reporterID, centerID, reason string) (*entities.Report, error)
}

// ReportHandler handles user reports against listed centers
type ReportHandler struct {
	service ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type createReportRequest struct {
	CenterID string `json:"center_id"`
	Reason   string `json:"reason"`
}

// CreateReport handles POST /api/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.service.Create(r.Context(), caller.ID, req.CenterID, req.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, report)
}
