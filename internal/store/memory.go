package store

import (
	"context"
	"sync"
	"time"

	"github.com/shortspan/shortspan/internal/shortener"
)

type memoryRow struct {
	longURL   string
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of shortener.Repository with the
// same logical-expiration semantics as the PostgreSQL store. The mutex stands
// in for the database transaction.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]memoryRow
}

// NewMemoryStore creates a new in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]memoryRow)}
}

func (m *MemoryStore) Retrieve(_ context.Context, id string) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[id]
	if !ok || !row.expiresAt.After(time.Now()) {
		return nil, shortener.ErrNotFound
	}

	return toShortURL(id, row.longURL, row.expiresAt)
}

func (m *MemoryStore) Save(_ context.Context, candidate *shortener.ShortURL) (*shortener.ShortURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := candidate.ID.String()

	if row, ok := m.rows[id]; ok && !row.expiresAt.Before(time.Now()) {
		existing, err := toShortURL(id, row.longURL, row.expiresAt)
		if err != nil {
			return nil, err
		}

		return nil, &shortener.AlreadyExistsError{Existing: existing}
	}

	// Absent or expired; either way the candidate takes the slot.
	m.rows[id] = memoryRow{
		longURL:   candidate.URL.String(),
		expiresAt: candidate.ExpiresAt.Time(),
	}

	return candidate, nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	var deleted int64

	for id, row := range m.rows {
		if !row.expiresAt.After(now) {
			delete(m.rows, id)

			deleted++
		}
	}

	return deleted, nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
