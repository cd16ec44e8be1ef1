package middleware

import (
	"net/http"

	"seamark-hq/meridian/pkg/gateway/httperr"
	"seamark-hq/meridian/pkg/limits"
	"seamark-hq/meridian/pkg/telemetry/metrics"
)

// RateLimit admits requests through the gateway limiter. Rejected
// requests get a 429 JSON error; a nil or disabled limiter admits
// everything. The collector may be nil.
func RateLimit(limiter *limits.Limiter, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !limiter.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			release, ok, reason := limiter.Allow()
			if !ok {
				if collector != nil {
					collector.RecordRateLimitRejection(r.URL.Path)
				}
				w.Header().Set("X-RateLimit-Reason", string(reason))
				httperr.WriteStatus(w, http.StatusTooManyRequests,
					"rate_limited", "Too many requests; slow down.")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
