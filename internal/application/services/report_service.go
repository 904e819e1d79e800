package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

// ReportService lets users flag approved centers.
type ReportService struct {
	reports repositories.ReportRepository
	centers repositories.CenterRepository
}

// NewReportService creates a new report service.
func NewReportService(reports repositories.ReportRepository, centers repositories.CenterRepository) *ReportService {
	return &ReportService{reports: reports, centers: centers}
}

// Create files a report against an approved center.
func (s *ReportService) Create(ctx context.Context, reporterID, centerID, reason string) (*entities.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("Reason is required")
	}

	center, err := s.centers.GetByID(ctx, centerID)
	if err != nil {
		return nil, err
	}
	if center.Status != entities.CenterStatusApproved {
		return nil, apperrors.NewNotFoundError("Center not found")
	}

	now := time.Now().UTC()
	report := &entities.Report{
		ID:         uuid.New().String(),
		CenterID:   center.ID,
		ReportedBy: reporterID,
		Reason:     reason,
		Status:     entities.ReportStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	if err := s.centers.IncrementReportCount(ctx, center.ID); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("center_id", center.ID).Msg("failed to count report")
	}
	return report, nil
}
