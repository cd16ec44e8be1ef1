package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// NoCredentialError indicates the token Carrier held no credential when
// a proxied call was about to be issued. The call fails fast; no network
// traffic is generated.
type NoCredentialError struct{}

// Error implements the error interface.
func (e *NoCredentialError) Error() string {
	return "no credential available for upstream request"
}

// NetworkError represents a transport-level failure: the request left
// the process but no HTTP response was obtained.
type NetworkError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream network error: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// AuthError indicates the vendor rejected the bearer credential
// (HTTP 401 or 403). Never retried: repeating the request cannot
// resolve the condition.
type AuthError struct {
	// StatusCode is 401 or 403.
	StatusCode int

	// Message is the vendor's error body.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream authentication failed (status %d): %s", e.StatusCode, e.Message)
}

// NotFoundError indicates the requested vendor resource does not exist
// (HTTP 404). Never retried.
type NotFoundError struct {
	// Path is the resource path that was not found.
	Path string

	// Message is the vendor's error body.
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("upstream resource %q not found: %s", e.Path, e.Message)
}

// RateLimitError indicates the vendor throttled the request (HTTP 429).
// It is retried under the backoff policy; RetryAfter carries the
// vendor's hint when one was sent.
type RateLimitError struct {
	// RetryAfter is the vendor-suggested wait, zero if absent.
	RetryAfter time.Duration

	// Message is the vendor's error body.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("upstream rate limit exceeded (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("upstream rate limit exceeded: %s", e.Message)
}

// HTTPError represents any other non-2xx vendor response, including the
// 5xx server-error class.
type HTTPError struct {
	// StatusCode is the vendor HTTP status.
	StatusCode int

	// Message is the vendor's error body.
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

// ValidationError indicates a proxied request was malformed before any
// network call was attempted.
type ValidationError struct {
	// Field is the name of the invalid field.
	Field string

	// Message describes what is invalid about the field.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request field %q: %s", e.Field, e.Message)
}

// RetryError annotates the last failure of an exhausted retry sequence
// with the total number of attempts spent.
type RetryError struct {
	// Attempts is how many executor calls were made.
	Attempts int

	// Cause is the final failure.
	Cause error
}

// Error implements the error interface.
func (e *RetryError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *RetryError) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status carried by err, or 0 when the error
// has no status (no credential, transport failure, validation).
func StatusOf(err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return http.StatusNotFound
	}
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return http.StatusTooManyRequests
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsRetryable reports whether repeating the request could produce a
// different outcome. Authentication failures, missing resources, missing
// credentials, and malformed requests are final; rate limits, server
// errors, and transport failures are transient.
func IsRetryable(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return false
	}
	var credErr *NoCredentialError
	if errors.As(err, &credErr) {
		return false
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return false
	}
	return true
}

// IsAuth reports whether err is an authentication or authorization
// failure (401 or 403 from the vendor).
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

// Kind returns the stable taxonomy code for err, used in error bodies,
// logs, and audit records. Retry annotation is transparent: the code of
// the underlying failure is returned.
func Kind(err error) string {
	var retryErr *RetryError
	if errors.As(err, &retryErr) {
		return Kind(retryErr.Cause)
	}
	var credErr *NoCredentialError
	if errors.As(err, &credErr) {
		return "no_credential"
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "network_error"
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return "auth_error"
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return "not_found"
	}
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return "rate_limited"
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 {
			return "server_error"
		}
		return "http_error"
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return "validation_error"
	}
	return "internal_error"
}
