package entities

import (
	"time"
)

// Role is a user's permission level
type Role string

const (
	RoleUser     Role = "user"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// User represents an account in the system
type User struct {
	ID                         string     `json:"id" db:"id"`
	Name                       string     `json:"name" db:"name"`
	Email                      string     `json:"email" db:"email"`
	PasswordHash               string     `json:"-" db:"password_hash"`
	Phone                      string     `json:"phone" db:"phone"`
	Role                       Role       `json:"role" db:"role"`
	IsMobileVerified           bool       `json:"is_mobile_verified" db:"is_mobile_verified"`
	IsLicenseVerified          bool       `json:"is_license_verified" db:"is_license_verified"`
	AddCenterOTPVerifiedAt     *time.Time `json:"add_center_otp_verified_at,omitempty" db:"add_center_otp_verified_at"`
	AddCenterOTPVerifiedPhone  string     `json:"add_center_otp_verified_phone,omitempty" db:"add_center_otp_verified_phone"`
	AddCenterLicenseVerifiedAt *time.Time `json:"add_center_license_verified_at,omitempty" db:"add_center_license_verified_at"`
	AddCenterLicenseURL        string     `json:"add_center_license_url,omitempty" db:"add_center_license_url"`
	BusinessName               string     `json:"business_name" db:"business_name"`
	LicenseNumber              string     `json:"license_number" db:"license_number"`
	LicenseURL                 string     `json:"license_url" db:"license_url"`
	Address                    string     `json:"address" db:"address"`
	ProfilePhoto               string     `json:"profile_photo" db:"profile_photo"`
	CreatedAt                  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at" db:"updated_at"`
}

// HasRecentOTPVerification reports whether the user completed add-center phone
// verification within window of now
func (u *User) HasRecentOTPVerification(now time.Time, window time.Duration) bool {
	if u.AddCenterOTPVerifiedAt == nil {
		return false
	}
	return now.Sub(*u.AddCenterOTPVerifiedAt) <= window
}

// HasLicenseVerification reports whether a license was uploaded for the current add-center flow
func (u *User) HasLicenseVerification() bool {
	return u.AddCenterLicenseVerifiedAt != nil && u.AddCenterLicenseURL != ""
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProfileUpdate carries the self-service profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	ProfilePhoto *string `json:"profile_photo"`
}
