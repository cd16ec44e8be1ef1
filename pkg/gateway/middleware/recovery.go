package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"seamark-hq/meridian/pkg/gateway/httperr"
)

// Recovery converts handler panics into a 500 JSON error body. The panic
// and stack trace are logged; no internal detail reaches the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				httperr.WriteStatus(w, http.StatusInternalServerError,
					"internal_error", "An internal error occurred.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
