package logging

import "strings"

// IsRateLimit reports whether an upstream provider error is a rate-limit
// rejection rather than a hard failure.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429")
}

// IsTimeout reports whether an error chain mentions a deadline or timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout")
}
