package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of filesystem events editors
// produce when saving a file.
const reloadDebounce = 100 * time.Millisecond

// Service holds the currently served manifest and keeps it fresh from
// its backing file. An invalid replacement is rejected and the last
// good manifest stays served.
type Service struct {
	path string

	mu      sync.RWMutex
	current *Manifest
}

// NewService loads the manifest at path. The initial load must succeed;
// later reloads fall back to the last good document.
func NewService(path string) (*Service, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Service{path: path, current: m}, nil
}

// Current returns the manifest being served.
func (s *Service) Current() *Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the backing file path.
func (s *Service) Path() string {
	return s.path
}

// Reload re-reads the backing file. On a validation or read failure the
// previous manifest stays in place and the error is returned.
func (s *Service) Reload() error {
	m, err := Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = m
	s.mu.Unlock()

	slog.Info("manifest reloaded",
		"path", s.path,
		"title", m.Title,
		"enabled", m.IsEnabled(),
	)
	return nil
}

// Watch blocks, reloading the manifest when its file changes, until ctx
// is cancelled. The parent directory is watched rather than the file
// itself: editors and orchestrators typically replace the file by
// rename, which would silently detach a direct watch.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating manifest watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	slog.Info("manifest watcher started", "path", s.path)

	base := filepath.Base(s.path)
	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			slog.Info("manifest watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("manifest watcher events channel closed")
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
				debounceC = debounce.C
			} else {
				debounce.Reset(reloadDebounce)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			if err := s.Reload(); err != nil {
				slog.Warn("manifest reload rejected, keeping last good",
					"path", s.path,
					"error", err,
				)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("manifest watcher errors channel closed")
			}
			slog.Warn("manifest watcher error", "error", err)
		}
	}
}
