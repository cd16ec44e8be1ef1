package platform

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultHandshakeTimeout bounds the connect handshake when the caller
// does not choose a timeout.
const DefaultHandshakeTimeout = 10 * time.Second

// ErrHandshakeTimeout is returned when the platform did not complete
// the handshake inside the configured timeout.
var ErrHandshakeTimeout = errors.New("platform handshake timed out")

// Handle is the API handle a completed handshake returns. It identifies
// the session; the bearer credential travels separately through token
// refresh events.
type Handle struct {
	// SessionID identifies the platform session.
	SessionID string

	// UserID is the platform user the session acts for.
	UserID string

	// ProjectID is the project the extension is embedded in.
	ProjectID string

	// ProjectRegion is the project's declared location string, resolved
	// to a host by the region package.
	ProjectRegion string
}

// HandshakeFunc performs the platform handshake, blocking until the
// platform answers or ctx is done. Implementations must honor ctx.
type HandshakeFunc func(ctx context.Context) (*Handle, error)

// Connect runs the handshake as a cancellable operation with a hard
// timeout. The outcome is one of: a Handle, ErrHandshakeTimeout when
// the deadline fires first, the caller's context error when the caller
// cancels, or the handshake's own failure.
//
// A handshake that ignores its context cannot block Connect past the
// timeout; it is left to finish in the background and its result is
// discarded.
func Connect(ctx context.Context, hs HandshakeFunc, timeout time.Duration) (*Handle, error) {
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	hsCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		handle *Handle
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		h, err := hs(hsCtx)
		done <- outcome{handle: h, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, ErrHandshakeTimeout
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("platform handshake failed: %w", out.err)
		}
		return out.handle, nil
	case <-hsCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrHandshakeTimeout
	}
}
