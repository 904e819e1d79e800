// Package phone normalizes Indian and US mobile numbers to E.164.
package phone

import (
	"regexp"
	"strings"
)

var (
	indianLocal = regexp.MustCompile(`^[6-9]\d{9}$`)
	usLocal     = regexp.MustCompile(`^[2-9]\d{2}[2-9]\d{6}$`)
	e164        = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// NormalizeE164 converts raw into +91XXXXXXXXXX or +1XXXXXXXXXX.
// Bare ten digit numbers use defaultCountryCode ("+1" selects US, anything else India).
// It returns "" when raw is not a valid number for either country.
func NormalizeE164(raw, defaultCountryCode string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	digits := digitsOnly(value)

	if strings.HasPrefix(value, "+") {
		switch {
		case strings.HasPrefix(value, "+91"):
			return withPrefix("+91", digits[2:], indianLocal)
		case strings.HasPrefix(value, "+1"):
			return withPrefix("+1", digits[1:], usLocal)
		default:
			return ""
		}
	}

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return withPrefix("+91", digits[2:], indianLocal)
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return withPrefix("+1", digits[1:], usLocal)
	case len(digits) == 10:
		if defaultCountryCode == "+1" {
			return withPrefix("+1", digits, usLocal)
		}
		return withPrefix("+91", digits, indianLocal)
	}

	return ""
}

// IsE164 reports whether value is a syntactically valid E.164 number.
func IsE164(value string) bool {
	return e164.MatchString(value)
}

// LocalDigits returns the last ten digits of an E.164 number, as gateways that
// take national numbers expect.
func LocalDigits(value string) string {
	digits := digitsOnly(value)
	if len(digits) <= 10 {
		return digits
	}
	return digits[len(digits)-10:]
}

func withPrefix(prefix, local string, pattern *regexp.Regexp) string {
	if !pattern.MatchString(local) {
		return ""
	}
	return prefix + local
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
