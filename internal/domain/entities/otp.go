package entities

import "time"

// OTPPurpose scopes a one-time password to the flow that requested it
type OTPPurpose string

const (
	OTPPurposeMobileVerification OTPPurpose = "mobile_verification"
	OTPPurposeAddCenterNormal    OTPPurpose = "add_center_normal"
	OTPPurposeAddCenterBusiness  OTPPurpose = "add_center_business"
)

// Valid reports whether p is a known purpose
func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeMobileVerification, OTPPurposeAddCenterNormal, OTPPurposeAddCenterBusiness:
		return true
	}
	return false
}

// IsAddCenter reports whether p gates center submission
func (p OTPPurpose) IsAddCenter() bool {
	return p == OTPPurposeAddCenterNormal || p == OTPPurposeAddCenterBusiness
}

// OTP is a one-time password sent to a phone number
type OTP struct {
	ID        string     `json:"id" db:"id"`
	Phone     string     `json:"phone" db:"phone"`
	Code      string     `json:"-" db:"code"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	UserID    *string    `json:"user_id,omitempty" db:"user_id"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	IsUsed    bool       `json:"is_used" db:"is_used"`
	Attempts  int        `json:"attempts" db:"attempts"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
