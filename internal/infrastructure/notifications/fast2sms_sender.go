package notifications

import (
	"context"
	"encoding/json"
	"errors"
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

const fast2SMSEndpoint = "https://www.fast2sms.com/dev/bulkV2"

// ErrFast2SMSInvalidPhone is returned for numbers that are not Indian mobiles
var ErrFast2SMSInvalidPhone = errors.New("fast2sms only delivers to Indian mobile numbers")

// Fast2SMSSender sends OTP messages over the Fast2SMS DLT route
type Fast2SMSSender struct {
	apiKey     string
	messageID  string
	senderID   string
	endpoint   string
	httpClient *http.Client
}

var _ providers.SMSSender = (*Fast2SMSSender)(nil)

// NewFast2SMSSender creates a Fast2SMS sender
func NewFast2SMSSender(cfg config.Fast2SMSConfig) *Fast2SMSSender {
	return &Fast2SMSSender{
		apiKey:    cfg.APIKey,
		messageID: cfg.MessageID,
		senderID:  cfg.SenderID,
		endpoint:  fast2SMSEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type fast2SMSResponse struct {
	Return  bool        `json:"return"`
	Message interface{} `json:"message"`
}

// SendOTP sends code using the registered DLT template
func (s *Fast2SMSSender) SendOTP(ctx context.Context, to, code string) error {
	if s.apiKey == "" || s.messageID == "" || s.senderID == "" {
		return providers.ErrSMSNotConfigured
	}

	numbers := indianLocalNumber(to)
	if numbers == "" {
		return ErrFast2SMSInvalidPhone
	}

	form := url.Values{
		"route":            {"dlt"},
		"sender_id":        {s.senderID},
		"message":          {s.messageID},
		"variables_values": {code},
		"numbers":          {numbers},
		"flash":            {"0"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result fast2SMSResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("fast2sms send failed (status %d): %s", resp.StatusCode, string(body))
	}
	if !result.Return {
		return fmt.Errorf("fast2sms send failed (status %d): %v", resp.StatusCode, result.Message)
	}
	return nil
}

// indianLocalNumber returns the ten digit national number for +91 numbers
func indianLocalNumber(raw string) string {
	normalized := phone.NormalizeE164(raw, "+91")
	if !strings.HasPrefix(normalized, "+91") {
		return ""
	}
	return phone.LocalDigits(normalized)
}
