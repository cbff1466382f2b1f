package util

import (
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	schemeRegex = regexp.MustCompile(`(?i)^https?://`)
)

// NormalizeEmail lowers and trims; email comparison is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func IsValidMobile(mobile string) bool {
	return mobileRegex.MatchString(mobile)
}

// SanitizeURL returns the trimmed URL if it is an absolute http(s) URL,
// otherwise the empty string.
func SanitizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !schemeRegex.MatchString(trimmed) {
		return ""
	}
	return trimmed
}
