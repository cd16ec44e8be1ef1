package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeManifest(t *testing.T, path, title string) {
	t.Helper()
	doc := `{"title":"` + title + `","url":"https://panel.teamcraft.io/x/","description":"d","enabled":true}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestService_InitialLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, "First")

	svc, err := NewService(path)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	if got := svc.Current().Title; got != "First" {
		t.Errorf("Current().Title = %q, want First", got)
	}
}

func TestService_InitialLoadMustSucceed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(`{"title":""}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewService(path); err == nil {
		t.Error("NewService() accepted an invalid manifest")
	}
}

func TestService_ReloadSwapsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, "First")

	svc, err := NewService(path)
	if err != nil {
		t.Fatal(err)
	}

	writeManifest(t, path, "Second")
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if got := svc.Current().Title; got != "Second" {
		t.Errorf("Current().Title = %q, want Second", got)
	}
}

func TestService_ReloadKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, "Good")

	svc, err := NewService(path)
	if err != nil {
		t.Fatal(err)
	}

	// Replace with an invalid document; the served manifest must not change.
	if err := os.WriteFile(path, []byte(`{"title":"Bad","url":"http://insecure/"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(); err == nil {
		t.Error("Reload() accepted an invalid replacement")
	}
	if got := svc.Current().Title; got != "Good" {
		t.Errorf("Current().Title = %q, want the last good manifest", got)
	}
}

func TestService_WatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	writeManifest(t, path, "First")

	svc, err := NewService(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() { watchDone <- svc.Watch(ctx) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeManifest(t, path, "Second")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Current().Title == "Second" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if got := svc.Current().Title; got != "Second" {
		t.Errorf("Current().Title = %q after file change, want Second", got)
	}

	cancel()
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch() returned %v on cancellation, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch() did not stop on context cancellation")
	}
}
