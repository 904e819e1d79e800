package services

import (
	"context"
	"strings"
	"time"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

// ModerationService backs the admin dashboard: center review, reports and
// business license verification
type ModerationService struct {
	centers repositories.CenterRepository
	index   repositories.CenterSearchRepository
	users   repositories.UserRepository
	reports repositories.ReportRepository
	now     func() time.Time
}

// NewModerationService creates a new moderation service. index may be nil.
func NewModerationService(
	centers repositories.CenterRepository,
	index repositories.CenterSearchRepository,
	users repositories.UserRepository,
	reports repositories.ReportRepository,
) *ModerationService {
	return &ModerationService{
		centers: centers,
		index:   index,
		users:   users,
		reports: reports,
		now:     time.Now,
	}
}

// PendingCenters lists centers awaiting review, newest first
func (s *ModerationService) PendingCenters(ctx context.Context) ([]*entities.Center, error) {
	return s.centers.ListByStatus(ctx, entities.CenterStatusPending)
}

// ApprovedCenters lists approved centers, newest first
func (s *ModerationService) ApprovedCenters(ctx context.Context) ([]*entities.Center, error) {
	return s.centers.ListByStatus(ctx, entities.CenterStatusApproved)
}

// Approve publishes a center and makes it searchable
func (s *ModerationService) Approve(ctx context.Context, adminID, id string) (*entities.Center, error) {
	center, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verifiedAt := s.now().UTC()
	center.Status = entities.CenterStatusApproved
	center.VerifiedBy = &adminID
	center.VerifiedAt = &verifiedAt
	center.IsVerified = true
	center.RejectionReason = ""

	if err := s.centers.Update(ctx, center); err != nil {
		return nil, err
	}
	syncCenterIndex(ctx, s.index, center)

	observability.LoggerFromContext(ctx).Info().Str("center_id", id).Str("admin_id", adminID).Msg("center approved")
	return center, nil
}

// Reject declines a center and removes it from search
func (s *ModerationService) Reject(ctx context.Context, id, reason string) (*entities.Center, error) {
	center, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	center.Status = entities.CenterStatusRejected
	center.RejectionReason = strings.TrimSpace(reason)

	if err := s.centers.Update(ctx, center); err != nil {
		return nil, err
	}
	removeFromCenterIndex(ctx, s.index, id)

	observability.LoggerFromContext(ctx).Info().Str("center_id", id).Msg("center rejected")
	return center, nil
}

// EditPending corrects a center before it is approved
func (s *ModerationService) EditPending(ctx context.Context, id string, update entities.CenterUpdate) (*entities.Center, error) {
	center, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if center.Status != entities.CenterStatusPending {
		return nil, apperrors.NewValidationError("Can only edit pending centers")
	}
	if update.TreatmentType != nil && !entities.ValidTreatmentType(*update.TreatmentType) {
		return nil, apperrors.NewValidationError("Invalid treatment type")
	}

	update.Apply(center)
	if err := s.centers.Update(ctx, center); err != nil {
		return nil, err
	}
	return center, nil
}

// DeleteCenter removes any center
func (s *ModerationService) DeleteCenter(ctx context.Context, id string) error {
	if err := s.centers.Delete(ctx, id); err != nil {
		return err
	}
	removeFromCenterIndex(ctx, s.index, id)
	return nil
}

// Reports lists all reports, newest first
func (s *ModerationService) Reports(ctx context.Context) ([]*entities.Report, error) {
	return s.reports.List(ctx)
}

// MarkReportReviewed closes a report
func (s *ModerationService) MarkReportReviewed(ctx context.Context, id string) (*entities.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reports.UpdateStatus(ctx, id, entities.ReportStatusReviewed); err != nil {
		return nil, err
	}
	report.Status = entities.ReportStatusReviewed
	return report, nil
}

// SetLicenseVerified grants or revokes a business account's license verification
func (s *ModerationService) SetLicenseVerified(ctx context.Context, userID string, verified bool) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != entities.RoleBusiness {
		return nil, apperrors.NewValidationError("User is not a business account")
	}

	user.IsLicenseVerified = verified
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", userID).Bool("verified", verified).Msg("business license verification changed")
	return user, nil
}

// Users lists all accounts, newest first
func (s *ModerationService) Users(ctx context.Context) ([]*entities.User, error) {
	return s.users.List(ctx)
}
