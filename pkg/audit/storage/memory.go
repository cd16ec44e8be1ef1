package storage

import (
	"context"
	"sort"
	"sync"

	"seamark-hq/meridian/pkg/audit"
)

// MemoryStore is an in-memory audit store for tests and ephemeral
// deployments. Records are kept in insertion order and never persisted.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*audit.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Store appends a record.
func (m *MemoryStore) Store(ctx context.Context, record *audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *record
	m.records = append(m.records, &cp)
	return nil
}

// Query returns records matching the filters, newest first.
func (m *MemoryStore) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*audit.Record
	for _, r := range m.records {
		if matches(r, query) {
			cp := *r
			matched = append(matched, &cp)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Time.After(matched[j].Time)
	})

	if query != nil {
		if query.Offset > 0 {
			if query.Offset >= len(matched) {
				return nil, nil
			}
			matched = matched[query.Offset:]
		}
		if query.Limit > 0 && query.Limit < len(matched) {
			matched = matched[:query.Limit]
		}
	}

	return matched, nil
}

// Count returns the number of records matching the filters.
func (m *MemoryStore) Count(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, r := range m.records {
		if matches(r, query) {
			n++
		}
	}
	return n, nil
}

// Delete removes records matching the filters.
func (m *MemoryStore) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if matches(r, query) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// matches reports whether a record passes all query filters. A nil
// query matches everything.
func matches(r *audit.Record, q *audit.Query) bool {
	if q == nil {
		return true
	}
	if q.From != nil && r.Time.Before(*q.From) {
		return false
	}
	if q.To != nil && r.Time.After(*q.To) {
		return false
	}
	if q.Region != "" && r.Region != q.Region {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}
