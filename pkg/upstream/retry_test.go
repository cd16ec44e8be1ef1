package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// recordSleeps replaces the backoff sleeper and returns the recorded
// delays. The caller restores the original via the returned func.
func recordSleeps() (*[]time.Duration, func()) {
	var delays []time.Duration
	orig := backoffSleep
	backoffSleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return &delays, func() { backoffSleep = orig }
}

func TestWithRetry_SuccessFirstAttempt(t *testing.T) {
	delays, restore := recordSleeps()
	defer restore()

	calls := 0
	result, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		return &Result{StatusCode: http.StatusOK}, nil
	}, RetryConfig{MaxAttempts: 4, InitialDelay: 100 * time.Millisecond})

	if err != nil {
		t.Fatalf("WithRetry() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no backoff waits, got %v", *delays)
	}
}

func TestWithRetry_AtMostMaxAttempts(t *testing.T) {
	_, restore := recordSleeps()
	defer restore()

	calls := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		return nil, &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "down"}
	}, RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	if calls != 3 {
		t.Errorf("operation called %d times, want exactly 3", calls)
	}

	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryError, got %v", err)
	}
	if retryErr.Attempts != 3 {
		t.Errorf("RetryError.Attempts = %d, want 3", retryErr.Attempts)
	}

	// The underlying classification stays visible through the wrapper.
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Error("RetryError does not unwrap to the final HTTPError")
	}
	if Kind(err) != "server_error" {
		t.Errorf("Kind() = %q, want server_error", Kind(err))
	}
}

func TestWithRetry_NoRetryOnFinalStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"401 unauthorized", &AuthError{StatusCode: 401, Message: "bad token"}},
		{"403 forbidden", &AuthError{StatusCode: 403, Message: "denied"}},
		{"404 not found", &NotFoundError{Path: "/projects/9", Message: "gone"}},
		{"missing credential", &NoCredentialError{}},
		{"malformed request", &ValidationError{Field: "resourcePath", Message: "empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delays, restore := recordSleeps()
			defer restore()

			calls := 0
			_, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
				calls++
				return nil, tt.err
			}, RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond})

			if calls != 1 {
				t.Errorf("operation called %d times, want 1", calls)
			}
			if !errors.Is(err, tt.err) && err != tt.err {
				t.Errorf("error = %v, want the original %v", err, tt.err)
			}
			var retryErr *RetryError
			if errors.As(err, &retryErr) {
				t.Error("final failure was wrapped in RetryError on first occurrence")
			}
			if len(*delays) != 0 {
				t.Errorf("expected no backoff waits, got %v", *delays)
			}
		})
	}
}

func TestWithRetry_BackoffSchedule(t *testing.T) {
	delays, restore := recordSleeps()
	defer restore()

	d := 50 * time.Millisecond
	_, _ = WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		return nil, &NetworkError{Cause: errors.New("connection reset")}
	}, RetryConfig{MaxAttempts: 5, InitialDelay: d})

	want := []time.Duration{d, 2 * d, 4 * d, 8 * d}
	if len(*delays) != len(want) {
		t.Fatalf("recorded %d waits (%v), want %d", len(*delays), *delays, len(want))
	}
	for i, got := range *delays {
		if got != want[i] {
			t.Errorf("delay before attempt %d = %v, want %v", i+2, got, want[i])
		}
	}
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	delays, restore := recordSleeps()
	defer restore()

	d := 25 * time.Millisecond
	calls := 0
	result, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		if calls <= 3 {
			return nil, &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "warming up"}
		}
		return &Result{StatusCode: http.StatusOK, Body: []byte(`{"ok":true}`)}, nil
	}, RetryConfig{MaxAttempts: 4, InitialDelay: d})

	if err != nil {
		t.Fatalf("WithRetry() error: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if calls != 4 {
		t.Errorf("operation called %d times, want 4", calls)
	}
	if result.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", result.Attempts)
	}

	want := []time.Duration{d, 2 * d, 4 * d}
	if len(*delays) != len(want) {
		t.Fatalf("recorded %d waits (%v), want %d", len(*delays), *delays, len(want))
	}
	for i, got := range *delays {
		if got != want[i] {
			t.Errorf("delay %d = %v, want %v", i+1, got, want[i])
		}
	}
}

func TestWithRetry_RateLimitedIsRetried(t *testing.T) {
	_, restore := recordSleeps()
	defer restore()

	calls := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		return nil, &RateLimitError{Message: "slow down"}
	}, RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
	if Kind(err) != "rate_limited" {
		t.Errorf("Kind() = %q, want rate_limited", Kind(err))
	}
}

func TestWithRetry_ContextCancelAbortsWait(t *testing.T) {
	orig := backoffSleep
	backoffSleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	defer func() { backoffSleep = orig }()

	calls := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		return nil, &NetworkError{Cause: errors.New("unreachable")}
	}, RetryConfig{MaxAttempts: 5, InitialDelay: time.Second})

	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}

	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryError, got %v", err)
	}
	if retryErr.Attempts != 1 {
		t.Errorf("RetryError.Attempts = %d, want 1", retryErr.Attempts)
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Error("cancelled retry lost the last failure")
	}
}

func TestWithRetry_MaxAttemptsFloor(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		return nil, &NetworkError{Cause: errors.New("down")}
	}, RetryConfig{MaxAttempts: 0, InitialDelay: time.Millisecond})

	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryError, got %v", err)
	}
	if retryErr.Attempts != 1 {
		t.Errorf("RetryError.Attempts = %d, want 1", retryErr.Attempts)
	}
}

func TestWithRetry_ObserverSeesEachRetry(t *testing.T) {
	_, restore := recordSleeps()
	defer restore()

	var reasons []string
	calls := 0
	result, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		calls++
		if calls < 3 {
			return nil, &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "down"}
		}
		return &Result{StatusCode: http.StatusOK}, nil
	}, RetryConfig{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		OnRetry:      func(reason string) { reasons = append(reasons, reason) },
	})

	if err != nil {
		t.Fatalf("WithRetry() error: %v", err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}

	// One observation per retry, carrying the failed attempt's kind.
	if len(reasons) != 2 {
		t.Fatalf("observer called %d times, want 2: %v", len(reasons), reasons)
	}
	for i, reason := range reasons {
		if reason != "server_error" {
			t.Errorf("reasons[%d] = %q, want server_error", i, reason)
		}
	}
}

func TestWithRetry_ObserverSilentOnFinalFailure(t *testing.T) {
	var reasons []string
	_, err := WithRetry(context.Background(), func(ctx context.Context) (*Result, error) {
		return nil, &NotFoundError{Path: "/projects/9/files"}
	}, RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry:      func(reason string) { reasons = append(reasons, reason) },
	})

	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(reasons) != 0 {
		t.Errorf("observer called on a non-retried failure: %v", reasons)
	}
}
