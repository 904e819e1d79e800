package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
	"github.com/kaayakalpa/healthfinder/pkg/phone"
)

const (
	OTPResendWindow = 5 * time.Minute
	OTPLifetime     = 10 * time.Minute
	OTPMaxAttempts  = 5
	otpCodeLength   = 6
)

const invalidPhoneMessage = "Enter a valid India (+91) or US (+1) phone number"

// OTPSettings configures phone verification
type OTPSettings struct {
	DefaultCountryCode string
	// DemoMode stores codes and returns them to the caller instead of sending SMS
	DemoMode bool
}

// OTPService issues and verifies phone one-time passwords
type OTPService struct {
	otps     repositories.OTPRepository
	users    repositories.UserRepository
	sms      providers.SMSSender
	settings OTPSettings
	metrics  *observability.Metrics
	now      func() time.Time
	generate func() (string, error)
}

// NewOTPService creates a new OTP service. metrics may be nil.
func NewOTPService(
	otps repositories.OTPRepository,
	users repositories.UserRepository,
	sms providers.SMSSender,
	settings OTPSettings,
	metrics *observability.Metrics,
) *OTPService {
	return &OTPService{
		otps:     otps,
		users:    users,
		sms:      sms,
		settings: settings,
		metrics:  metrics,
		now:      time.Now,
		generate: generateOTPCode,
	}
}

// SendOTPInput is a request for a new code. Caller is nil for anonymous requests.
type SendOTPInput struct {
	Phone     string
	Purpose   entities.OTPPurpose
	UserID    string
	IPAddress string
	Caller    *entities.User
}

// SendOTPResult describes a dispatched code
type SendOTPResult struct {
	Message   string `json:"message"`
	SMSSent   bool   `json:"sms_sent"`
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"`
	DemoOTP   string `json:"demo_otp,omitempty"`
}

// Send issues a code for phone and purpose. The code is stored only after the
// SMS gateway accepted it, except in demo mode.
func (s *OTPService) Send(ctx context.Context, input SendOTPInput) (*SendOTPResult, error) {
	if !input.Purpose.Valid() {
		return nil, apperrors.NewValidationError("Invalid purpose")
	}

	normalized := phone.NormalizeE164(input.Phone, s.settings.DefaultCountryCode)
	if normalized == "" {
		return nil, apperrors.NewValidationError(invalidPhoneMessage)
	}

	if err := authorizeOTPPurpose(input.Caller, input.Purpose); err != nil {
		return nil, err
	}

	owner, err := otpOwner(input)
	if err != nil {
		return nil, err
	}

	if input.Purpose == entities.OTPPurposeAddCenterBusiness {
		registered := phone.NormalizeE164(input.Caller.Phone, s.settings.DefaultCountryCode)
		if registered == "" || registered != normalized {
			return nil, apperrors.NewValidationError("Please use your registered business phone number for verification")
		}
	}

	now := s.now()
	recent, err := s.otps.ExistsSince(ctx, normalized, input.Purpose, now.Add(-OTPResendWindow))
	if err != nil {
		return nil, err
	}
	if recent {
		return nil, apperrors.NewRateLimitedError("OTP already sent. Please wait 5 minutes before requesting again.")
	}

	code, err := s.generate()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate otp", err)
	}

	otp := &entities.OTP{
		ID:        uuid.New().String(),
		Phone:     normalized,
		Code:      code,
		Purpose:   input.Purpose,
		UserID:    owner,
		ExpiresAt: now.Add(OTPLifetime),
		IPAddress: input.IPAddress,
		CreatedAt: now,
	}
	expiresIn := int(OTPLifetime / time.Second)
	logger := observability.LoggerFromContext(ctx)

	if s.settings.DemoMode {
		if err := s.otps.Create(ctx, otp); err != nil {
			return nil, err
		}
		observability.RecordOTPSent(ctx, s.metrics, string(input.Purpose), true)
		logger.Info().Str("purpose", string(input.Purpose)).Msg("otp generated in demo mode")
		return &SendOTPResult{
			Message:   "OTP generated in demo mode",
			SMSSent:   false,
			Phone:     normalized,
			ExpiresIn: expiresIn,
			DemoOTP:   code,
		}, nil
	}

	if err := s.sms.SendOTP(ctx, normalized, code); err != nil {
		switch {
		case errors.Is(err, providers.ErrSMSNotConfigured):
			return nil, apperrors.NewUnavailableError("OTP service unavailable: SMS provider credentials are missing")
		case errors.Is(err, providers.ErrSMSMisconfigured):
			return nil, apperrors.NewInternalError("OTP service misconfigured: TWILIO_PHONE_NUMBER must be in +E.164 format", err)
		default:
			logger.Error().Err(err).Str("purpose", string(input.Purpose)).Msg("otp send failed")
			return nil, apperrors.NewExternalError("Failed to send OTP via SMS provider", err)
		}
	}

	if err := s.otps.Create(ctx, otp); err != nil {
		return nil, err
	}
	observability.RecordOTPSent(ctx, s.metrics, string(input.Purpose), false)

	return &SendOTPResult{
		Message:   "OTP sent successfully",
		SMSSent:   true,
		Phone:     normalized,
		ExpiresIn: expiresIn,
	}, nil
}

// Resend is Send with both phone and purpose required up front
func (s *OTPService) Resend(ctx context.Context, input SendOTPInput) (*SendOTPResult, error) {
	if strings.TrimSpace(input.Phone) == "" || input.Purpose == "" {
		return nil, apperrors.NewValidationError("Phone and purpose are required")
	}
	return s.Send(ctx, input)
}

// VerifyOTPInput is a code submitted for checking
type VerifyOTPInput struct {
	Phone   string
	Code    string
	Purpose entities.OTPPurpose
	Caller  *entities.User
}

// VerifyOTPResult reports a successful verification
type VerifyOTPResult struct {
	Verified bool   `json:"verified"`
	UserID   string `json:"user_id,omitempty"`
}

// Verify checks a code against the newest unused, unexpired OTP and applies
// the purpose's effect on the user
func (s *OTPService) Verify(ctx context.Context, input VerifyOTPInput) (*VerifyOTPResult, error) {
	if !input.Purpose.Valid() {
		return nil, apperrors.NewValidationError("Invalid purpose")
	}
	if len(input.Code) != otpCodeLength {
		return nil, apperrors.NewValidationError("OTP must be 6 digits")
	}

	normalized := phone.NormalizeE164(input.Phone, s.settings.DefaultCountryCode)
	if normalized == "" {
		return nil, apperrors.NewValidationError(invalidPhoneMessage)
	}

	if err := authorizeOTPPurpose(input.Caller, input.Purpose); err != nil {
		return nil, err
	}

	now := s.now()
	otp, err := s.otps.FindActive(ctx, normalized, input.Purpose, now)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewValidationError("Invalid or expired OTP")
		}
		return nil, err
	}

	if otp.UserID != nil && input.Caller != nil && input.Caller.ID != *otp.UserID {
		return nil, apperrors.NewForbiddenError("This OTP belongs to another account")
	}

	if otp.Attempts >= OTPMaxAttempts {
		otp.IsUsed = true
		if err := s.otps.Update(ctx, otp); err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidationError("Too many attempts. Please request a new OTP.")
	}

	otp.Attempts++
	if otp.Code != input.Code {
		if err := s.otps.Update(ctx, otp); err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidationError("Invalid OTP")
	}

	otp.IsUsed = true
	if err := s.otps.Update(ctx, otp); err != nil {
		return nil, err
	}

	result := &VerifyOTPResult{Verified: true}

	switch {
	case input.Purpose == entities.OTPPurposeMobileVerification:
		targetID := ""
		if otp.UserID != nil {
			targetID = *otp.UserID
		} else if input.Caller != nil {
			targetID = input.Caller.ID
		}
		if targetID != "" {
			if err := s.updateUser(ctx, targetID, func(u *entities.User) {
				u.IsMobileVerified = true
				u.Phone = normalized
			}); err != nil {
				return nil, err
			}
			result.UserID = targetID
		}

	case input.Purpose.IsAddCenter() && input.Caller != nil:
		verifiedAt := now.UTC()
		if err := s.updateUser(ctx, input.Caller.ID, func(u *entities.User) {
			u.AddCenterOTPVerifiedAt = &verifiedAt
			u.AddCenterOTPVerifiedPhone = normalized
			u.Phone = normalized
			if input.Purpose == entities.OTPPurposeAddCenterBusiness {
				u.AddCenterLicenseVerifiedAt = nil
				u.AddCenterLicenseURL = ""
			}
		}); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *OTPService) updateUser(ctx context.Context, id string, apply func(*entities.User)) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	apply(user)
	return s.users.Update(ctx, user)
}

// authorizeOTPPurpose gates the add-center purposes behind login, and the
// business purpose behind a business account with a registered phone
func authorizeOTPPurpose(caller *entities.User, purpose entities.OTPPurpose) error {
	if !purpose.IsAddCenter() {
		return nil
	}
	if caller == nil {
		return apperrors.NewUnauthorizedError("Login is required for Add Center verification")
	}
	if purpose == entities.OTPPurposeAddCenterBusiness {
		if caller.Role != entities.RoleBusiness {
			return apperrors.NewForbiddenError("Only business accounts can use business Add Center flow")
		}
		if strings.TrimSpace(caller.Phone) == "" {
			return apperrors.NewValidationError("Please set your registered phone number in profile before verification")
		}
	}
	return nil
}

// otpOwner binds the code to the authenticated caller. A user id in the
// request body is accepted only when it names the caller.
func otpOwner(input SendOTPInput) (*string, error) {
	requested := strings.TrimSpace(input.UserID)
	if input.Caller == nil {
		if requested != "" {
			return nil, apperrors.NewUnauthorizedError("Login is required to verify a phone for an account")
		}
		return nil, nil
	}
	if requested != "" && requested != input.Caller.ID {
		return nil, apperrors.NewForbiddenError("Cannot request an OTP for another account")
	}
	id := input.Caller.ID
	return &id, nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
