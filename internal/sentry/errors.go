package sentry

import "fmt"

// AuthError means the configured auth token was rejected (401/403).
// It is never retried and its message carries no credential material.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("sentry: authentication failed (HTTP %d)", e.StatusCode)
}

// RateLimitError means the upstream returned 429. The fetcher does not retry
// it; callers decide whether to surface retry-later guidance.
type RateLimitError struct {
	RetryAfter string // Retry-After header value, may be empty
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("sentry: rate limit exceeded, retry after %ss", e.RetryAfter)
	}
	return "sentry: rate limit exceeded"
}

// APIError represents any other non-2xx response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sentry: HTTP %d: %s", e.StatusCode, e.Body)
}
