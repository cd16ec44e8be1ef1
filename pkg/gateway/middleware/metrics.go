package middleware

import (
	"net/http"
	"strings"
	"time"

	"seamark-hq/meridian/pkg/telemetry/metrics"
)

// Metrics records one request observation per call: route, method,
// status, and latency. A nil collector disables recording.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if collector == nil {
				next.ServeHTTP(w, r)
				return
			}

			started := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			collector.RecordRequest(routeLabel(r.URL.Path), r.Method, rw.statusCode, time.Since(started))
		})
	}
}

// routeLabel collapses path parameters so project IDs do not explode
// the route label's cardinality.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/v1/projects/") {
		rest := strings.TrimPrefix(path, "/v1/projects/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/v1/projects/{projectId}" + rest[i:]
		}
		return "/v1/projects/{projectId}"
	}
	return path
}
