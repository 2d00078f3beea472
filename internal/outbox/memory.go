package outbox

import (
	"context"
	"fmt"
	"sync"

	"selectclass/pkg/response"
)

// Memory is the Repository used when no database is configured. Entries do
// not survive a restart.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Enqueue(_ context.Context, e Entry) error {
	const op = "outbox.Memory.Enqueue"

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cur := range m.entries {
		if cur.ID == e.ID {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
	}

	m.entries = append(m.entries, e)

	return nil
}

func (m *Memory) Pending(_ context.Context, limit, maxAttempts int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for _, e := range m.entries {
		if len(out) == limit {
			break
		}
		if e.Attempts < maxAttempts {
			out = append(out, e)
		}
	}

	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}

	return nil
}

func (m *Memory) MarkFailed(_ context.Context, id string, errMsg string) error {
	const op = "outbox.Memory.MarkFailed"

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].Attempts++
			m.entries[i].LastError = errMsg
			return nil
		}
	}

	return fmt.Errorf("%s: %w", op, response.ErrNotFound)
}

// All returns a copy of every entry, parked ones included.
func (m *Memory) All() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Entry(nil), m.entries...)
}
