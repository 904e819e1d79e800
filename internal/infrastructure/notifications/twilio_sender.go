package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/pkg/config"
	"github.com/kaayakalpa/healthfinder/pkg/phone"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioSender sends OTP messages through the Twilio Messages API
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

var _ providers.SMSSender = (*TwilioSender)(nil)

// NewTwilioSender creates a Twilio sender. Missing credentials are reported
// when a message is sent, not here.
func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	return &TwilioSender{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		baseURL:    twilioBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendOTP sends code to an E.164 phone number
func (s *TwilioSender) SendOTP(ctx context.Context, to, code string) error {
	if s.accountSID == "" || s.authToken == "" || s.fromNumber == "" {
		return providers.ErrSMSNotConfigured
	}
	if !phone.IsE164(s.fromNumber) {
		return fmt.Errorf("%w: TWILIO_PHONE_NUMBER must be in +E.164 format", providers.ErrSMSMisconfigured)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))
	form := url.Values{
		"To":   {to},
		"From": {s.fromNumber},
		"Body": {otpMessage(code)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("twilio sms failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func otpMessage(code string) string {
	return fmt.Sprintf("Your Kaaya Kalpa OTP is %s. It expires in 10 minutes.", code)
}
