package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type held struct {
	token   string
	expires time.Time
}

// MemoryLock is a process-local Locker, used when no redis address is
// configured.
type MemoryLock struct {
	mu    sync.Mutex
	locks map[string]held
	now   func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		locks: make(map[string]held),
		now:   time.Now,
	}
}

func (m *MemoryLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if h, ok := m.locks[key]; ok && now.Before(h.expires) {
		return "", false, nil
	}

	h := held{token: uuid.NewString(), expires: now.Add(ttl)}
	m.locks[key] = h

	return h.token, true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.locks[key]; ok && h.token == token {
		delete(m.locks, key)
	}

	return nil
}

func (m *MemoryLock) Close() error {
	return nil
}
