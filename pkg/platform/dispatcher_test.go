package platform

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"seamark-hq/meridian/pkg/token"
)

func TestDispatch_RoutesByVariant(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{DedupWindow: -1})

	var gotCommand, gotRefresh, gotSettings, gotInvalidated bool
	d.OnCommand(func(ctx context.Context, e CommandInvoked) error {
		gotCommand = true
		return nil
	})
	d.OnTokenRefresh(func(ctx context.Context, e TokenRefreshed) error {
		gotRefresh = true
		return nil
	})
	d.OnSettingsChange(func(ctx context.Context, e SettingsChanged) error {
		gotSettings = true
		return nil
	})
	d.OnSessionInvalidated(func(ctx context.Context, e SessionInvalidated) error {
		gotInvalidated = true
		return nil
	})

	ctx := context.Background()
	events := []Event{
		CommandInvoked{Command: "open-report"},
		TokenRefreshed{Token: "tok"},
		SettingsChanged{Settings: json.RawMessage(`{}`)},
		SessionInvalidated{Reason: "logout"},
	}
	for _, ev := range events {
		if err := d.Dispatch(ctx, ev); err != nil {
			t.Fatalf("Dispatch(%T) error: %v", ev, err)
		}
	}

	if !gotCommand || !gotRefresh || !gotSettings || !gotInvalidated {
		t.Errorf("handlers hit: command=%v refresh=%v settings=%v invalidated=%v, want all",
			gotCommand, gotRefresh, gotSettings, gotInvalidated)
	}
}

func TestDispatch_NoHandlerIsDropped(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})

	if err := d.Dispatch(context.Background(), CommandInvoked{Command: "x"}); err != nil {
		t.Errorf("Dispatch() without handler returned %v, want nil", err)
	}
	if err := d.Dispatch(context.Background(), TokenRefreshed{Token: "tok"}); err != nil {
		t.Errorf("Dispatch() without handler returned %v, want nil", err)
	}
}

func TestDispatch_HandlerErrorPropagates(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{DedupWindow: -1})
	boom := errors.New("handler failed")
	d.OnCommand(func(ctx context.Context, e CommandInvoked) error { return boom })

	if err := d.Dispatch(context.Background(), CommandInvoked{Command: "x"}); !errors.Is(err, boom) {
		t.Errorf("Dispatch() = %v, want handler error", err)
	}
}

func TestDispatch_CollapsesRapidDuplicateCommands(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{DedupWindow: 200 * time.Millisecond})

	calls := 0
	d.OnCommand(func(ctx context.Context, e CommandInvoked) error {
		calls++
		return nil
	})

	ev := CommandInvoked{Command: "open-report", Payload: json.RawMessage(`{"p":"1"}`)}
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := d.Dispatch(ctx, ev); err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("handler called %d times for rapid duplicates, want 1", calls)
	}
}

func TestDispatch_DifferentPayloadNotCollapsed(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{DedupWindow: 200 * time.Millisecond})

	calls := 0
	d.OnCommand(func(ctx context.Context, e CommandInvoked) error {
		calls++
		return nil
	})

	ctx := context.Background()
	_ = d.Dispatch(ctx, CommandInvoked{Command: "open-report", Payload: json.RawMessage(`{"p":"1"}`)})
	_ = d.Dispatch(ctx, CommandInvoked{Command: "open-report", Payload: json.RawMessage(`{"p":"2"}`)})
	_ = d.Dispatch(ctx, CommandInvoked{Command: "close-report", Payload: json.RawMessage(`{"p":"2"}`)})

	if calls != 3 {
		t.Errorf("handler called %d times for distinct commands, want 3", calls)
	}
}

func TestDispatch_DedupWindowExpires(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{DedupWindow: 20 * time.Millisecond})

	calls := 0
	d.OnCommand(func(ctx context.Context, e CommandInvoked) error {
		calls++
		return nil
	})

	ev := CommandInvoked{Command: "open-report"}
	ctx := context.Background()
	_ = d.Dispatch(ctx, ev)
	_ = d.Dispatch(ctx, ev) // inside window, suppressed
	time.Sleep(40 * time.Millisecond)
	_ = d.Dispatch(ctx, ev) // window expired, delivered

	if calls != 2 {
		t.Errorf("handler called %d times, want 2 (one per window)", calls)
	}
}

func TestDispatch_DedupDisabled(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{DedupWindow: -1})

	calls := 0
	d.OnCommand(func(ctx context.Context, e CommandInvoked) error {
		calls++
		return nil
	})

	ev := CommandInvoked{Command: "open-report"}
	ctx := context.Background()
	_ = d.Dispatch(ctx, ev)
	_ = d.Dispatch(ctx, ev)

	if calls != 2 {
		t.Errorf("handler called %d times with dedup disabled, want 2", calls)
	}
}

func TestBindTokenLifecycle(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	carrier := token.NewCarrier()
	BindTokenLifecycle(d, carrier)

	ctx := context.Background()

	if err := d.Dispatch(ctx, TokenRefreshed{Token: "tok-1"}); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if got, _ := carrier.Get(); got != "tok-1" {
		t.Errorf("carrier = %q after refresh, want tok-1", got)
	}

	if err := d.Dispatch(ctx, TokenRefreshed{Token: "tok-2"}); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if got, _ := carrier.Get(); got != "tok-2" {
		t.Errorf("carrier = %q, want the replacement tok-2", got)
	}

	if err := d.Dispatch(ctx, TokenRefreshed{Token: ""}); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if carrier.Present() {
		t.Error("carrier still holds a credential after empty refresh")
	}

	carrier.Set("tok-3")
	if err := d.Dispatch(ctx, SessionInvalidated{Reason: "logout"}); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if carrier.Present() {
		t.Error("carrier still holds a credential after session invalidation")
	}
}
