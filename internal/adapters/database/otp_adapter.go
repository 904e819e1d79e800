package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

// OTPAdapter implements OTPRepository
type OTPAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewOTPAdapter creates a new OTP adapter
func NewOTPAdapter(client *postgres.Client) repositories.OTPRepository {
	return &OTPAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a new OTP
func (a *OTPAdapter) Create(ctx context.Context, otp *entities.OTP) error {
	query, args, err := a.db.Insert("otps").Rows(goqu.Record{
		"id":         otp.ID,
		"phone":      otp.Phone,
		"code":       otp.Code,
		"purpose":    string(otp.Purpose),
		"user_id":    nullableString(otp.UserID),
		"expires_at": otp.ExpiresAt,
		"is_used":    otp.IsUsed,
		"attempts":   otp.Attempts,
		"ip_address": otp.IPAddress,
		"created_at": otp.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create otp", err)
	}
	return nil
}

// ExistsSince reports whether an OTP for phone and purpose was created at or after since
func (a *OTPAdapter) ExistsSince(ctx context.Context, phone string, purpose entities.OTPPurpose, since time.Time) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("otps").
		Where(
			goqu.Ex{"phone": phone, "purpose": string(purpose)},
			goqu.I("created_at").Gte(since),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check recent otp", err)
	}
	return count > 0, nil
}

// FindActive returns the newest unused OTP for phone and purpose that expires after now
func (a *OTPAdapter) FindActive(ctx context.Context, phone string, purpose entities.OTPPurpose, now time.Time) (*entities.OTP, error) {
	query, args, err := a.db.Select(
		"id", "phone", "code", "purpose", "user_id", "expires_at", "is_used", "attempts", "ip_address", "created_at",
	).From("otps").
		Where(
			goqu.Ex{"phone": phone, "purpose": string(purpose), "is_used": false},
			goqu.I("expires_at").Gt(now),
		).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	otp := &entities.OTP{}
	var (
		otpPurpose string
		userID     sql.NullString
	)
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&otp.ID,
		&otp.Phone,
		&otp.Code,
		&otpPurpose,
		&userID,
		&otp.ExpiresAt,
		&otp.IsUsed,
		&otp.Attempts,
		&otp.IPAddress,
		&otp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Invalid or expired OTP")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get otp", err)
	}

	otp.Purpose = entities.OTPPurpose(otpPurpose)
	otp.UserID = stringPtr(userID)
	return otp, nil
}

// Update persists attempts and used state
func (a *OTPAdapter) Update(ctx context.Context, otp *entities.OTP) error {
	query, args, err := a.db.Update("otps").
		Set(goqu.Record{
			"attempts": otp.Attempts,
			"is_used":  otp.IsUsed,
		}).
		Where(goqu.Ex{"id": otp.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update otp", err)
	}
	return expectAffected(result, "OTP not found")
}
