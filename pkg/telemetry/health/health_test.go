package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckLiveness(t *testing.T) {
	c := New(0)

	status := c.CheckLiveness(context.Background())
	if status.Status != "ok" {
		t.Errorf("liveness: got %q", status.Status)
	}
}

func TestCheckReadiness_NoChecks(t *testing.T) {
	c := New(0)

	status := c.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("empty checker should be ready, got %q", status.Status)
	}
}

func TestCheckReadiness_AllHealthy(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("config", func(ctx context.Context) error { return nil })
	c.RegisterCheck("manifest", func(ctx context.Context) error { return nil })

	status := c.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("got %q, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("expected 2 check results, got %d", len(status.Checks))
	}
	if status.Checks["config"].Status != "ok" {
		t.Errorf("config check: got %q", status.Checks["config"].Status)
	}
}

func TestCheckReadiness_Degraded(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("config", func(ctx context.Context) error { return nil })
	c.RegisterCheck("audit", func(ctx context.Context) error {
		return errors.New("store unreachable")
	})

	status := c.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("got %q, want degraded", status.Status)
	}
	if status.Checks["audit"].Message != "store unreachable" {
		t.Errorf("audit message: got %q", status.Checks["audit"].Message)
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	status := c.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("timed-out check should degrade, got %q", status.Status)
	}
}

func TestUnregisterCheck(t *testing.T) {
	c := New(0)
	c.RegisterCheck("a", func(ctx context.Context) error { return nil })
	c.UnregisterCheck("a")

	if len(c.ListChecks()) != 0 {
		t.Errorf("check not removed: %v", c.ListChecks())
	}
}

func TestMount_Endpoints(t *testing.T) {
	mux := http.NewServeMux()
	c := New(time.Second)
	Mount(mux, c, "1.2.3", "abc123", "2026-08-25")

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/health/live", http.StatusOK},
		{"/health/ready", http.StatusOK},
		{"/version", http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: got %d, want %d", tt.path, rec.Code, tt.wantStatus)
		}
	}
}

func TestReadinessHandler_Returns503WhenDegraded(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("bad", func(ctx context.Context) error {
		return errors.New("down")
	})

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest("GET", "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("body status: got %q", status.Status)
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.3", "abc123", "2026-08-25")(rec, httptest.NewRequest("GET", "/version", nil))

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if info.Version != "1.2.3" {
		t.Errorf("version: got %q", info.Version)
	}
	if info.GoVersion == "" {
		t.Error("go version missing")
	}
}

func TestHandlers_RejectPost(t *testing.T) {
	c := New(time.Second)
	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest("POST", "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("got %d, want 405", rec.Code)
	}
}
