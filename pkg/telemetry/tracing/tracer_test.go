package tracing

import (
	"context"
	"errors"
	"testing"

	"seamark-hq/meridian/pkg/config"
)

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if tracer.Enabled() {
		t.Error("tracer should report disabled")
	}

	// Noop tracer still yields usable spans.
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()
	if ctx == nil {
		t.Error("Start returned nil context")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on disabled tracer: %v", err)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"always", false},
		{"never", false},
		{"ratio", false},
		{"", false},
		{"coin-flip", true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			_, err := createSampler(tt.strategy, 0.5)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID, got %q", id)
	}
}

func TestSetErrorAndStatus_NoopSpan(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, span := tracer.Start(context.Background(), "op")
	defer span.End()

	// Must not panic on noop spans.
	SetError(span, errors.New("boom"))
	SetError(span, nil)
	SetStatus(span, errors.New("boom"))
	SetStatus(span, nil)
}

func TestAttributes(t *testing.T) {
	kv := Region("EUROPE")
	if string(kv.Key) != AttrRegion || kv.Value.AsString() != "EUROPE" {
		t.Errorf("region attribute: %v", kv)
	}

	kv = StatusCode(502)
	if kv.Value.AsInt64() != 502 {
		t.Errorf("status attribute: %v", kv)
	}

	kv = Attempts(3)
	if string(kv.Key) != AttrAttempts || kv.Value.AsInt64() != 3 {
		t.Errorf("attempts attribute: %v", kv)
	}
}
