// Package outbox keeps remote writes that failed as part of a larger command
// and replays them until the store accepts them.
package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const DefaultMaxAttempts = 20

// Entry is one parked write. Body is the JSON document of a PUT and empty for
// a DELETE.
type Entry struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Path      string          `json:"path"`
	Body      json.RawMessage `json:"body,omitempty"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"lastError,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Repository interface {
	Enqueue(ctx context.Context, e Entry) error
	Pending(ctx context.Context, limit, maxAttempts int) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

// NewPut and NewDelete build entries for the two write verbs the store knows.
func NewPut(id, path string, data any, now time.Time) (Entry, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return Entry{}, err
	}

	return Entry{ID: id, Method: http.MethodPut, Path: path, Body: body, CreatedAt: now}, nil
}

func NewDelete(id, path string, now time.Time) Entry {
	return Entry{ID: id, Method: http.MethodDelete, Path: path, CreatedAt: now}
}
