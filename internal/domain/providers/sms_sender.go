package providers

import (
	"context"
	"errors"
)

var (
	// ErrSMSNotConfigured is returned when the gateway credentials are missing
	ErrSMSNotConfigured = errors.New("sms provider is not configured")

	// ErrSMSMisconfigured is returned when the gateway configuration is present but invalid
	ErrSMSMisconfigured = errors.New("sms provider is misconfigured")
)

// SMSSender delivers one-time passwords over SMS
type SMSSender interface {
	// SendOTP sends code to an E.164 phone number
	SendOTP(ctx context.Context, phone, code string) error
}
