package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/mocks"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

const testPhone = "+919876543210"

type otpFixture struct {
	otps  *mocks.MockOTPRepository
	users *mocks.MockUserRepository
	sms   *mocks.MockSMSSender
}

func newOTPService(t *testing.T, demo bool) (*services.OTPService, otpFixture) {
	f := otpFixture{
		otps:  mocks.NewMockOTPRepository(t),
		users: mocks.NewMockUserRepository(t),
		sms:   mocks.NewMockSMSSender(t),
	}
	settings := services.OTPSettings{DefaultCountryCode: "+91", DemoMode: demo}
	return services.NewOTPService(f.otps, f.users, f.sms, settings, nil), f
}

func TestOTPService_Send(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	var sentCode string
	f.otps.On("ExistsSince", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(false, nil)
	f.sms.On("SendOTP", ctx, testPhone, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sentCode = args.String(2) }).
		Return(nil)
	f.otps.On("Create", ctx, mock.MatchedBy(func(o *entities.OTP) bool {
		return o.Phone == testPhone && o.Code == sentCode && o.UserID == nil &&
			time.Until(o.ExpiresAt) > 9*time.Minute
	})).Return(nil)

	result, err := svc.Send(ctx, services.SendOTPInput{Phone: "98765 43210", Purpose: entities.OTPPurposeMobileVerification})
	require.NoError(t, err)
	assert.True(t, result.SMSSent)
	assert.Equal(t, testPhone, result.Phone)
	assert.Equal(t, 600, result.ExpiresIn)
	assert.Empty(t, result.DemoOTP)
	assert.Len(t, sentCode, 6)
}

func TestOTPService_Send_DemoMode(t *testing.T) {
	svc, f := newOTPService(t, true)
	ctx := context.Background()

	f.otps.On("ExistsSince", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(false, nil)
	f.otps.On("Create", ctx, mock.Anything).Return(nil)

	result, err := svc.Send(ctx, services.SendOTPInput{
		Phone:   testPhone,
		Purpose: entities.OTPPurposeMobileVerification,
		UserID:  "u1",
		Caller:  &entities.User{ID: "u1", Role: entities.RoleUser},
	})
	require.NoError(t, err)
	assert.False(t, result.SMSSent)
	assert.Regexp(t, `^[1-9]\d{5}$`, result.DemoOTP)

	stored := f.otps.Calls[1].Arguments.Get(1).(*entities.OTP)
	assert.Equal(t, result.DemoOTP, stored.Code)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "u1", *stored.UserID)
}

func TestOTPService_Send_Rejections(t *testing.T) {
	ctx := context.Background()
	business := &entities.User{ID: "b1", Role: entities.RoleBusiness, Phone: testPhone}

	tests := []struct {
		name    string
		input   services.SendOTPInput
		errType apperrors.ErrorType
		message string
	}{
		{
			name:    "unknown purpose",
			input:   services.SendOTPInput{Phone: testPhone, Purpose: "login"},
			errType: apperrors.ErrorTypeValidation,
			message: "Invalid purpose",
		},
		{
			name:    "bad phone",
			input:   services.SendOTPInput{Phone: "12345", Purpose: entities.OTPPurposeMobileVerification},
			errType: apperrors.ErrorTypeValidation,
			message: "valid India (+91) or US (+1)",
		},
		{
			name:    "add center without login",
			input:   services.SendOTPInput{Phone: testPhone, Purpose: entities.OTPPurposeAddCenterNormal},
			errType: apperrors.ErrorTypeUnauthorized,
		},
		{
			name: "business flow for regular user",
			input: services.SendOTPInput{
				Phone:   testPhone,
				Purpose: entities.OTPPurposeAddCenterBusiness,
				Caller:  &entities.User{ID: "u1", Role: entities.RoleUser, Phone: testPhone},
			},
			errType: apperrors.ErrorTypeForbidden,
		},
		{
			name: "business flow without registered phone",
			input: services.SendOTPInput{
				Phone:   testPhone,
				Purpose: entities.OTPPurposeAddCenterBusiness,
				Caller:  &entities.User{ID: "b2", Role: entities.RoleBusiness},
			},
			errType: apperrors.ErrorTypeValidation,
			message: "registered phone number in profile",
		},
		{
			name: "business flow with another phone",
			input: services.SendOTPInput{
				Phone:   "+14155552671",
				Purpose: entities.OTPPurposeAddCenterBusiness,
				Caller:  business,
			},
			errType: apperrors.ErrorTypeValidation,
			message: "registered business phone",
		},
		{
			name: "anonymous caller names an account",
			input: services.SendOTPInput{
				Phone:   testPhone,
				Purpose: entities.OTPPurposeMobileVerification,
				UserID:  "victim",
			},
			errType: apperrors.ErrorTypeUnauthorized,
		},
		{
			name: "caller names another account",
			input: services.SendOTPInput{
				Phone:   testPhone,
				Purpose: entities.OTPPurposeMobileVerification,
				UserID:  "victim",
				Caller:  &entities.User{ID: "u1", Role: entities.RoleUser},
			},
			errType: apperrors.ErrorTypeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newOTPService(t, false)

			_, err := svc.Send(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.errType, apperrors.TypeOf(err))
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestOTPService_Send_Throttled(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	f.otps.On("ExistsSince", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.MatchedBy(func(since time.Time) bool {
		age := time.Since(since)
		return age > 4*time.Minute && age < 6*time.Minute
	})).Return(true, nil)

	_, err := svc.Send(ctx, services.SendOTPInput{Phone: testPhone, Purpose: entities.OTPPurposeMobileVerification})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeRateLimited))
}

func TestOTPService_Send_GatewayErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		sendErr error
		errType apperrors.ErrorType
	}{
		{"not configured", providers.ErrSMSNotConfigured, apperrors.ErrorTypeUnavailable},
		{"misconfigured", fmt.Errorf("%w: bad sender", providers.ErrSMSMisconfigured), apperrors.ErrorTypeInternal},
		{"gateway failure", errors.New("status 500"), apperrors.ErrorTypeExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := newOTPService(t, false)
			f.otps.On("ExistsSince", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(false, nil)
			f.sms.On("SendOTP", ctx, testPhone, mock.Anything).Return(tt.sendErr)

			_, err := svc.Send(ctx, services.SendOTPInput{Phone: testPhone, Purpose: entities.OTPPurposeMobileVerification})
			require.Error(t, err)
			assert.Equal(t, tt.errType, apperrors.TypeOf(err))
			f.otps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOTPService_Resend_RequiresFields(t *testing.T) {
	svc, _ := newOTPService(t, false)

	_, err := svc.Resend(context.Background(), services.SendOTPInput{Phone: testPhone})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Phone and purpose are required")
}

func activeOTP(attempts int) *entities.OTP {
	return &entities.OTP{
		ID:        "otp-1",
		Phone:     testPhone,
		Code:      "482913",
		Purpose:   entities.OTPPurposeMobileVerification,
		UserID:    strPtr("u1"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Attempts:  attempts,
	}
}

func TestOTPService_Verify_MobileVerification(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(activeOTP(0), nil)
	f.otps.On("Update", ctx, mock.MatchedBy(func(o *entities.OTP) bool {
		return o.IsUsed && o.Attempts == 1
	})).Return(nil)
	f.users.On("GetByID", ctx, "u1").Return(&entities.User{ID: "u1", Phone: "9876543210"}, nil)
	f.users.On("Update", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.IsMobileVerified && u.Phone == testPhone
	})).Return(nil)

	result, err := svc.Verify(ctx, services.VerifyOTPInput{
		Phone:   testPhone,
		Code:    "482913",
		Purpose: entities.OTPPurposeMobileVerification,
	})
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "u1", result.UserID)
}

func TestOTPService_Verify_WrongCode(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(activeOTP(2), nil)
	f.otps.On("Update", ctx, mock.MatchedBy(func(o *entities.OTP) bool {
		return !o.IsUsed && o.Attempts == 3
	})).Return(nil)

	_, err := svc.Verify(ctx, services.VerifyOTPInput{Phone: testPhone, Code: "000000", Purpose: entities.OTPPurposeMobileVerification})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OTP")
}

func TestOTPService_Verify_TooManyAttempts(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(activeOTP(services.OTPMaxAttempts), nil)
	f.otps.On("Update", ctx, mock.MatchedBy(func(o *entities.OTP) bool {
		return o.IsUsed && o.Attempts == services.OTPMaxAttempts
	})).Return(nil)

	_, err := svc.Verify(ctx, services.VerifyOTPInput{Phone: testPhone, Code: "482913", Purpose: entities.OTPPurposeMobileVerification})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many attempts")
}

func TestOTPService_Verify_Expired(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).
		Return(nil, apperrors.NewNotFoundError("OTP not found"))

	_, err := svc.Verify(ctx, services.VerifyOTPInput{Phone: testPhone, Code: "482913", Purpose: entities.OTPPurposeMobileVerification})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "Invalid or expired OTP")
}

func TestOTPService_Verify_ShortCode(t *testing.T) {
	svc, _ := newOTPService(t, false)

	_, err := svc.Verify(context.Background(), services.VerifyOTPInput{Phone: testPhone, Code: "123", Purpose: entities.OTPPurposeMobileVerification})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6 digits")
}

func TestOTPService_Verify_BusinessAddCenter(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()
	caller := &entities.User{ID: "b1", Role: entities.RoleBusiness, Phone: testPhone}

	otp := activeOTP(0)
	otp.Purpose = entities.OTPPurposeAddCenterBusiness
	otp.UserID = strPtr("b1")

	licensedAt := time.Now().Add(-time.Hour)
	stored := &entities.User{
		ID:                         "b1",
		Role:                       entities.RoleBusiness,
		Phone:                      testPhone,
		AddCenterLicenseVerifiedAt: &licensedAt,
		AddCenterLicenseURL:        "/uploads/licenses/old.pdf",
	}

	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeAddCenterBusiness, mock.Anything).Return(otp, nil)
	f.otps.On("Update", ctx, mock.Anything).Return(nil)
	f.users.On("GetByID", ctx, "b1").Return(stored, nil)
	f.users.On("Update", ctx, mock.Anything).Return(nil)

	result, err := svc.Verify(ctx, services.VerifyOTPInput{
		Phone:   testPhone,
		Code:    "482913",
		Purpose: entities.OTPPurposeAddCenterBusiness,
		Caller:  caller,
	})
	require.NoError(t, err)
	assert.True(t, result.Verified)

	require.NotNil(t, stored.AddCenterOTPVerifiedAt)
	assert.WithinDuration(t, time.Now(), *stored.AddCenterOTPVerifiedAt, time.Minute)
	assert.Equal(t, testPhone, stored.AddCenterOTPVerifiedPhone)
	assert.Nil(t, stored.AddCenterLicenseVerifiedAt)
	assert.Empty(t, stored.AddCenterLicenseURL)
}

func TestOTPService_Send_AnonymousCodeHasNoOwner(t *testing.T) {
	svc, f := newOTPService(t, true)
	ctx := context.Background()

	f.otps.On("ExistsSince", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(false, nil)
	f.otps.On("Create", ctx, mock.MatchedBy(func(o *entities.OTP) bool {
		return o.UserID == nil
	})).Return(nil)

	result, err := svc.Send(ctx, services.SendOTPInput{Phone: testPhone, Purpose: entities.OTPPurposeMobileVerification})
	require.NoError(t, err)
	assert.NotEmpty(t, result.DemoOTP)
}

func TestOTPService_Verify_AnonymousCodeUpdatesNobody(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	otp := activeOTP(0)
	otp.UserID = nil
	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(otp, nil)
	f.otps.On("Update", ctx, mock.Anything).Return(nil)

	result, err := svc.Verify(ctx, services.VerifyOTPInput{
		Phone:   testPhone,
		Code:    "482913",
		Purpose: entities.OTPPurposeMobileVerification,
	})
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Empty(t, result.UserID)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOTPService_Verify_OtherAccountsCode(t *testing.T) {
	svc, f := newOTPService(t, false)
	ctx := context.Background()

	f.otps.On("FindActive", ctx, testPhone, entities.OTPPurposeMobileVerification, mock.Anything).Return(activeOTP(0), nil)

	_, err := svc.Verify(ctx, services.VerifyOTPInput{
		Phone:   testPhone,
		Code:    "482913",
		Purpose: entities.OTPPurposeMobileVerification,
		Caller:  &entities.User{ID: "intruder", Role: entities.RoleUser},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForbidden))
	f.otps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
