package upstream

import (
	"time"

	"seamark-hq/meridian/pkg/region"
)

// ProxyRequest describes one request to forward to the vendor REST
// surface. A value is constructed fresh per call and never reused; the
// bearer credential is not part of the request, it is read from the
// token Carrier at execution time.
type ProxyRequest struct {
	// ResourcePath is the vendor resource path, rooted at the versioned
	// API prefix of the resolved host (for example "/projects/123/files").
	ResourcePath string

	// Region selects the vendor host. Derived once per request from
	// project metadata; the zero value resolves to the US host.
	Region region.Region

	// Method is the HTTP method. Empty defaults to GET.
	Method string

	// Body is the optional request payload, forwarded verbatim.
	Body []byte
}

// Result is the successful outcome of a proxied call.
type Result struct {
	// StatusCode is the upstream HTTP status (always 2xx).
	StatusCode int

	// Body is the upstream response payload.
	Body []byte

	// Attempts is the number of executor invocations that produced this
	// result. It is 1 for a bare Execute call; the retry wrapper sets
	// the total it spent.
	Attempts int
}

// ClientConfig configures the upstream client.
type ClientConfig struct {
	// APIPrefix is the versioned path prefix of the vendor REST surface.
	// Default: "/v2".
	APIPrefix string

	// Timeout bounds each individual HTTP call. Default: 30s.
	Timeout time.Duration

	// MaxIdleConns and MaxIdleConnsPerHost tune the pooled transport.
	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle pooled connections are kept.
	IdleConnTimeout time.Duration

	// Hosts overrides the built-in region table, keyed by canonical
	// region. Entries are applied at construction; regions not listed
	// resolve through the default table.
	Hosts map[region.Region]string
}

// RetryConfig configures the retry wrapper.
type RetryConfig struct {
	// MaxAttempts is the total number of calls allowed, including the
	// first. Values below 1 are treated as 1.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt. Each further
	// wait doubles: d, 2d, 4d, and so on. No jitter is applied.
	InitialDelay time.Duration

	// OnRetry, when set, is invoked once per retry with the taxonomy
	// kind of the failure being retried, before the backoff wait.
	OnRetry func(reason string)
}

// ThrottleConfig configures windowed batch execution.
type ThrottleConfig struct {
	// MaxConcurrent is the window size: how many tasks run in parallel
	// before the batch waits for the window to drain. Values below 1
	// are treated as 1.
	MaxConcurrent int

	// OnOccupancy, when set, is invoked with the number of tasks in
	// flight as each window starts, and with 0 once the batch drains.
	OnOccupancy func(n int)
}
