package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

var userColumns = []interface{}{
	"id", "name", "email", "password_hash", "phone", "role",
	"is_mobile_verified", "is_license_verified",
	"add_center_otp_verified_at", "add_center_otp_verified_phone",
	"add_center_license_verified_at", "add_center_license_url",
	"business_name", "license_number", "license_url", "address", "profile_photo",
	"created_at", "updated_at",
}

// UserAdapter implements UserRepository
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func userRecord(u *entities.User) goqu.Record {
	return goqu.Record{
		"name":                           u.Name,
		"email":                          strings.ToLower(u.Email),
		"password_hash":                  u.PasswordHash,
		"phone":                          u.Phone,
		"role":                           string(u.Role),
		"is_mobile_verified":             u.IsMobileVerified,
		"is_license_verified":            u.IsLicenseVerified,
		"add_center_otp_verified_at":     nullableTime(u.AddCenterOTPVerifiedAt),
		"add_center_otp_verified_phone":  u.AddCenterOTPVerifiedPhone,
		"add_center_license_verified_at": nullableTime(u.AddCenterLicenseVerifiedAt),
		"add_center_license_url":         u.AddCenterLicenseURL,
		"business_name":                  u.BusinessName,
		"license_number":                 u.LicenseNumber,
		"license_url":                    u.LicenseURL,
		"address":                        u.Address,
		"profile_photo":                  u.ProfilePhoto,
		"updated_at":                     u.UpdatedAt,
	}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := userRecord(user)
	record["id"] = user.ID
	record["created_at"] = user.CreatedAt

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("User already exists")
		}
		return apperrors.NewInternalError("failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).From("users").Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return user, nil
}

// Update updates a user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now()

	query, args, err := a.db.Update("users").
		Set(userRecord(user)).
		Where(goqu.Ex{"id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update user", err)
	}
	return expectAffected(result, "User not found")
}

// List retrieves all users, newest first
func (a *UserAdapter) List(ctx context.Context) ([]*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*entities.User, error) {
	u := &entities.User{}
	var (
		role                             string
		otpVerifiedAt, licenseVerifiedAt sql.NullTime
	)

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Phone,
		&role,
		&u.IsMobileVerified,
		&u.IsLicenseVerified,
		&otpVerifiedAt,
		&u.AddCenterOTPVerifiedPhone,
		&licenseVerifiedAt,
		&u.AddCenterLicenseURL,
		&u.BusinessName,
		&u.LicenseNumber,
		&u.LicenseURL,
		&u.Address,
		&u.ProfilePhoto,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = entities.Role(role)
	u.AddCenterOTPVerifiedAt = timePtr(otpVerifiedAt)
	u.AddCenterLicenseVerifiedAt = timePtr(licenseVerifiedAt)
	return u, nil
}
