package platform

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"seamark-hq/meridian/pkg/token"
)

// DefaultDedupWindow is how long a repeated identical command is
// suppressed after one was dispatched.
const DefaultDedupWindow = 300 * time.Millisecond

// DispatcherConfig configures event dispatch.
type DispatcherConfig struct {
	// DedupWindow suppresses identical command invocations arriving
	// within this duration of the last dispatched one. Zero uses
	// DefaultDedupWindow; negative disables deduplication.
	DedupWindow time.Duration
}

// Dispatcher routes decoded events to registered handlers.
//
// The platform may deliver the same event more than once and provides
// no deduplication identifier, so exactly-once handling cannot be
// guaranteed. As a best effort, rapid repeats of an identical command
// (same command and payload inside the dedup window) are collapsed;
// everything else is delivered as it arrives.
type Dispatcher struct {
	dedupWindow time.Duration

	mu                   sync.Mutex
	onCommand            func(context.Context, CommandInvoked) error
	onTokenRefresh       func(context.Context, TokenRefreshed) error
	onSettingsChange     func(context.Context, SettingsChanged) error
	onSessionInvalidated func(context.Context, SessionInvalidated) error

	lastCommandKey string
	lastCommandAt  time.Time
}

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	window := config.DedupWindow
	if window == 0 {
		window = DefaultDedupWindow
	}
	return &Dispatcher{dedupWindow: window}
}

// OnCommand registers the command invocation handler.
func (d *Dispatcher) OnCommand(fn func(context.Context, CommandInvoked) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onCommand = fn
}

// OnTokenRefresh registers the token refresh handler.
func (d *Dispatcher) OnTokenRefresh(fn func(context.Context, TokenRefreshed) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onTokenRefresh = fn
}

// OnSettingsChange registers the settings change handler.
func (d *Dispatcher) OnSettingsChange(fn func(context.Context, SettingsChanged) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSettingsChange = fn
}

// OnSessionInvalidated registers the session invalidation handler.
func (d *Dispatcher) OnSessionInvalidated(fn func(context.Context, SessionInvalidated) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSessionInvalidated = fn
}

// Dispatch delivers one event to its handler. Events without a
// registered handler are dropped with a debug log. Returns the
// handler's error, or nil for dropped and deduplicated events.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case CommandInvoked:
		return d.dispatchCommand(ctx, e)
	case TokenRefreshed:
		d.mu.Lock()
		fn := d.onTokenRefresh
		d.mu.Unlock()
		if fn == nil {
			slog.Debug("no handler for token refresh event")
			return nil
		}
		return fn(ctx, e)
	case SettingsChanged:
		d.mu.Lock()
		fn := d.onSettingsChange
		d.mu.Unlock()
		if fn == nil {
			slog.Debug("no handler for settings change event")
			return nil
		}
		return fn(ctx, e)
	case SessionInvalidated:
		d.mu.Lock()
		fn := d.onSessionInvalidated
		d.mu.Unlock()
		if fn == nil {
			slog.Debug("no handler for session invalidation event")
			return nil
		}
		slog.Info("session invalidated by platform", "reason", e.Reason)
		return fn(ctx, e)
	default:
		slog.Warn("dropping event of unhandled type", "kind", ev.Kind())
		return nil
	}
}

// dispatchCommand delivers a command invocation, collapsing rapid
// identical repeats. The suppression window is anchored at the last
// dispatched command: duplicates do not extend it.
func (d *Dispatcher) dispatchCommand(ctx context.Context, e CommandInvoked) error {
	key := e.Command + "\x00" + string(e.Payload)

	d.mu.Lock()
	fn := d.onCommand
	if d.dedupWindow > 0 && key == d.lastCommandKey && time.Since(d.lastCommandAt) < d.dedupWindow {
		d.mu.Unlock()
		slog.Debug("suppressing duplicate command", "command", e.Command)
		return nil
	}
	d.lastCommandKey = key
	d.lastCommandAt = time.Now()
	d.mu.Unlock()

	if fn == nil {
		slog.Debug("no handler for command event", "command", e.Command)
		return nil
	}
	return fn(ctx, e)
}

// BindTokenLifecycle wires the credential-bearing events to a Carrier:
// a refresh replaces the credential wholesale (an empty token clears
// it), and an invalidated session clears it.
func BindTokenLifecycle(d *Dispatcher, carrier *token.Carrier) {
	d.OnTokenRefresh(func(ctx context.Context, e TokenRefreshed) error {
		if e.Token == "" {
			slog.Warn("token refresh delivered empty credential, clearing")
			carrier.Clear()
			return nil
		}
		carrier.Set(e.Token)
		slog.Debug("credential refreshed")
		return nil
	})
	d.OnSessionInvalidated(func(ctx context.Context, e SessionInvalidated) error {
		carrier.Clear()
		return nil
	})
}
