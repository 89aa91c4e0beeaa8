// Package persistance saves and loads the canonical view state of a session.
package persistance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
)

var ErrNotFound = errors.New("no stored state")

// StateStore is the save/load port for view state. State is stored as the
// canonical query string so it reads the same as the shareable URL.
type StateStore interface {
	Load(ctx context.Context, session string, ct types.ContentType) (string, error)
	Save(ctx context.Context, session string, ct types.ContentType, query string) error
}

func Key(session string, ct types.ContentType) string {
	return "slaskcatalog:view:" + session + ":" + string(ct)
}

type entry struct {
	query   string
	expires time.Time
}

// MemoryStore keeps state in process, entries expire after TTL when set.
type MemoryStore struct {
	mu      sync.RWMutex
	TTL     time.Duration
	entries map[string]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, entries: map[string]entry{}}
}

func (m *MemoryStore) Load(_ context.Context, session string, ct types.ContentType) (string, error) {
	m.mu.RLock()
	e, ok := m.entries[Key(session, ct)]
	m.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && e.expires.Before(time.Now())) {
		return "", ErrNotFound
	}
	return e.query, nil
}

func (m *MemoryStore) Save(_ context.Context, session string, ct types.ContentType, query string) error {
	e := entry{query: query}
	if m.TTL > 0 {
		e.expires = time.Now().Add(m.TTL)
	}
	m.mu.Lock()
	m.entries[Key(session, ct)] = e
	m.mu.Unlock()
	return nil
}
