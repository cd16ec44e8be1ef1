package upstream

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no credential", &NoCredentialError{}, "no_credential"},
		{"network", &NetworkError{Cause: errors.New("refused")}, "network_error"},
		{"auth 401", &AuthError{StatusCode: 401}, "auth_error"},
		{"auth 403", &AuthError{StatusCode: 403}, "auth_error"},
		{"not found", &NotFoundError{Path: "/x"}, "not_found"},
		{"rate limited", &RateLimitError{}, "rate_limited"},
		{"server 500", &HTTPError{StatusCode: 500}, "server_error"},
		{"server 503", &HTTPError{StatusCode: 503}, "server_error"},
		{"client 400", &HTTPError{StatusCode: 400}, "http_error"},
		{"validation", &ValidationError{Field: "region"}, "validation_error"},
		{"unknown", errors.New("boom"), "internal_error"},
		{
			"retry wrapper is transparent",
			&RetryError{Attempts: 4, Cause: &HTTPError{StatusCode: 503}},
			"server_error",
		},
		{
			"wrapped deeper",
			fmt.Errorf("handling request: %w", &AuthError{StatusCode: 401}),
			"auth_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"auth carries its status", &AuthError{StatusCode: 403}, 403},
		{"not found is 404", &NotFoundError{Path: "/x"}, 404},
		{"rate limited is 429", &RateLimitError{}, 429},
		{"http error carries status", &HTTPError{StatusCode: 502}, 502},
		{"no credential has none", &NoCredentialError{}, 0},
		{"network has none", &NetworkError{Cause: errors.New("x")}, 0},
		{
			"status survives retry annotation",
			&RetryError{Attempts: 2, Cause: &HTTPError{StatusCode: 503}},
			503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401", &AuthError{StatusCode: 401}, false},
		{"403", &AuthError{StatusCode: 403}, false},
		{"404", &NotFoundError{Path: "/x"}, false},
		{"no credential", &NoCredentialError{}, false},
		{"validation", &ValidationError{Field: "x"}, false},
		{"429", &RateLimitError{}, true},
		{"503", &HTTPError{StatusCode: 503}, true},
		{"network", &NetworkError{Cause: errors.New("reset")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryErrorMessage(t *testing.T) {
	err := &RetryError{
		Attempts: 4,
		Cause:    &HTTPError{StatusCode: 503, Message: "unavailable"},
	}

	msg := err.Error()
	if !strings.Contains(msg, "4 attempts") {
		t.Errorf("message %q does not mention the attempt count", msg)
	}
	if !strings.Contains(msg, "503") {
		t.Errorf("message %q does not carry the final status", msg)
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	withHint := &RateLimitError{RetryAfter: 30 * time.Second, Message: "slow down"}
	if !strings.Contains(withHint.Error(), "30s") {
		t.Errorf("message %q does not mention the retry-after hint", withHint.Error())
	}

	plain := &RateLimitError{Message: "slow down"}
	if strings.Contains(plain.Error(), "retry after") {
		t.Errorf("message %q mentions a hint that was never sent", plain.Error())
	}
}
