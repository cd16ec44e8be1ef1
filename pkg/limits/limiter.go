package limits

// Config contains configuration for the gateway limiter.
type Config struct {
	// Enabled enables rate limiting. When false, Allow always admits.
	Enabled bool

	// RequestsPerSecond is the sustained admission rate.
	RequestsPerSecond float64

	// Burst is the maximum burst size above the sustained rate.
	Burst int64

	// MaxConcurrent caps simultaneous in-flight requests. 0 disables
	// the concurrency cap.
	MaxConcurrent int
}

// Limiter admits or rejects incoming gateway requests. It combines a
// token bucket for rate smoothing with an optional concurrency cap.
type Limiter struct {
	bucket     *TokenBucket
	concurrent *ConcurrentLimiter
	enabled    bool
}

// Reason explains why a request was rejected.
type Reason string

const (
	// ReasonRate means the sustained rate was exceeded.
	ReasonRate Reason = "rate"

	// ReasonConcurrency means too many requests were in flight.
	ReasonConcurrency Reason = "concurrency"
)

// New creates a limiter from the given configuration. A nil or
// disabled configuration yields a limiter that admits everything.
func New(cfg *Config) *Limiter {
	if cfg == nil || !cfg.Enabled {
		return &Limiter{}
	}

	l := &Limiter{enabled: true}

	burst := cfg.Burst
	if burst <= 0 {
		burst = int64(cfg.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	l.bucket = NewTokenBucket(burst, cfg.RequestsPerSecond)

	if cfg.MaxConcurrent > 0 {
		l.concurrent = NewConcurrentLimiter(cfg.MaxConcurrent)
	}

	return l
}

// Allow attempts to admit one request. On success it returns a release
// function that must be called when the request finishes, and true.
// On rejection it returns nil, false, and the reason.
func (l *Limiter) Allow() (func(), bool, Reason) {
	if !l.enabled {
		return func() {}, true, ""
	}

	if !l.bucket.Take(1) {
		return nil, false, ReasonRate
	}

	if l.concurrent != nil {
		if !l.concurrent.Acquire() {
			return nil, false, ReasonConcurrency
		}
		return l.concurrent.Release, true, ""
	}

	return func() {}, true, ""
}

// InFlight returns the number of requests currently admitted, or 0
// when no concurrency cap is configured.
func (l *Limiter) InFlight() int64 {
	if l.concurrent == nil {
		return 0
	}
	return l.concurrent.Current()
}

// Enabled reports whether the limiter actually limits.
func (l *Limiter) Enabled() bool {
	return l.enabled
}
