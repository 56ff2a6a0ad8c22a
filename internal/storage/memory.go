package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/sense/internal/models"
)

// MemoryStore is an in-memory Store for tests and throwaway indexes.
// Records are copied on the way in and out so callers never alias stored slices.
type MemoryStore struct {
	records map[string]*models.FileRecord
	mu      sync.RWMutex
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.FileRecord)}
}

// Get returns a copy of the record for path.
func (m *MemoryStore) Get(ctx context.Context, path string) (*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return rec.Clone(), nil
}

// Snapshot returns copies of all records ordered by path.
func (m *MemoryStore) Snapshot(ctx context.Context) ([]*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.FileRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Hashes returns path -> hash for every record.
func (m *MemoryStore) Hashes(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.records))
	for p, rec := range m.records {
		out[p] = rec.Hash
	}
	return out, nil
}

// Upsert stores a copy of rec, enforcing the shared dimension.
func (m *MemoryStore) Upsert(ctx context.Context, rec *models.FileRecord) error {
	if err := validateRecord(rec); err != nil {
		return storeErr("upsert", "", err)
	}
	if err := ctx.Err(); err != nil {
		return storeErr("upsert", rec.Path, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for p, other := range m.records {
		if p == rec.Path {
			continue
		}
		if len(other.Embedding) != len(rec.Embedding) {
			return storeErr("upsert", rec.Path,
				fmt.Errorf("%w: got %d, store has %d", ErrDimensionMismatch, len(rec.Embedding), len(other.Embedding)))
		}
		break
	}
	m.records[rec.Path] = rec.Clone()
	return nil
}

// Delete removes path.
func (m *MemoryStore) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, path)
	return nil
}

// Count returns the number of records.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Dimension returns the shared embedding dimension, 0 when empty.
func (m *MemoryStore) Dimension(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		return len(rec.Embedding), nil
	}
	return 0, nil
}

// Reset drops every record.
func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*models.FileRecord)
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
