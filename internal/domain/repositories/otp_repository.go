package repositories

import (
	"context"
	"time"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// OTPRepository defines the interface for one-time password storage
type OTPRepository interface {
	// Create stores a new OTP
	Create(ctx context.Context, otp *entities.OTP) error

	// ExistsSince reports whether an OTP for phone and purpose was created at or after since
	ExistsSince(ctx context.Context, phone string, purpose entities.OTPPurpose, since time.Time) (bool, error)

	// FindActive returns the newest unused OTP for phone and purpose that expires after now
	FindActive(ctx context.Context, phone string, purpose entities.OTPPurpose, now time.Time) (*entities.OTP, error)

	// Update persists attempts and used state
	Update(ctx context.Context, otp *entities.OTP) error
}
