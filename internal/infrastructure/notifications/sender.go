// Package notifications delivers one-time passwords over SMS gateways.
package notifications

import (
	"github.com/rs/zerolog/log"

	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/pkg/config"
)

// NewSMSSender returns the gateway selected by OTP_PROVIDER
func NewSMSSender(cfg config.OTPConfig) providers.SMSSender {
	switch cfg.Provider {
	case "fast2sms":
		log.Info().Str("provider", "fast2sms").Msg("sms provider selected")
		return NewFast2SMSSender(cfg.Fast2SMS)
	case "twilio", "":
		log.Info().Str("provider", "twilio").Msg("sms provider selected")
		return NewTwilioSender(cfg.Twilio)
	default:
		log.Warn().Str("provider", cfg.Provider).Msg("unknown sms provider, using twilio")
		return NewTwilioSender(cfg.Twilio)
	}
}
