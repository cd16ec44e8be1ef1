package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"seamark-hq/meridian/pkg/gateway/httperr"
)

// Timeout enforces a per-request deadline. When the deadline passes the
// request context is cancelled and a 504 JSON error is returned;
// handlers must observe ctx.Done() to stop their work.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			// The handler and the timeout branch race for the writer;
			// guardedWriter makes sure exactly one response is written.
			gw := &guardedWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded && gw.markTimeout() {
					httperr.WriteStatus(w, http.StatusGatewayTimeout,
						"timeout", "The request took too long to complete.")
				}
			}
		})
	}
}

// guardedWriter serializes access so the timeout response and a late
// handler response cannot interleave. Once the timeout response is
// written, handler output is silently discarded.
type guardedWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (g *guardedWriter) WriteHeader(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timedOut || g.wroteHeader {
		return
	}
	g.wroteHeader = true
	g.ResponseWriter.WriteHeader(code)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timedOut {
		return len(b), nil
	}
	g.wroteHeader = true
	return g.ResponseWriter.Write(b)
}

// markTimeout claims the writer for the timeout response. It fails when
// the handler already started writing.
func (g *guardedWriter) markTimeout() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wroteHeader {
		return false
	}
	g.timedOut = true
	return true
}
