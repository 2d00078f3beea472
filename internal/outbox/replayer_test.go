package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"selectclass/internal/storage/remote/remotetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainReplaysAndParks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mem := remotetest.NewMemory()
	mem.Seed("v1/expenses/e1", map[string]any{"id": "e1"})

	repo := NewMemory()
	put, err := NewPut("o1", "v1/appointments/b1", map[string]any{"id": "b1", "title": "Curso"}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(ctx, put))
	require.NoError(t, repo.Enqueue(ctx, NewDelete("o2", "v1/expenses/e1", now)))
	require.NoError(t, repo.Enqueue(ctx, NewDelete("o3", "v1/expenses/e9", now)))

	assert.Error(t, repo.Enqueue(ctx, NewDelete("o3", "v1/expenses/e9", now)), "duplicate ids are rejected")

	mem.FailOn(http.MethodDelete, "v1/expenses/e9", errors.New("unavailable"))

	r := NewReplayer(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, mem, time.Hour, 10)
	r.maxAttempts = 2

	n, err := r.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var booking map[string]any
	require.True(t, mem.Decode("v1/appointments/b1", &booking))
	assert.Equal(t, "Curso", booking["title"])
	assert.False(t, mem.Has("v1/expenses/e1"))

	left := repo.All()
	require.Len(t, left, 1)
	assert.Equal(t, "o3", left[0].ID)
	assert.Equal(t, 1, left[0].Attempts)
	assert.Equal(t, "unavailable", left[0].LastError)

	_, err = r.Drain(ctx)
	require.NoError(t, err)

	pending, err := repo.Pending(ctx, 10, r.maxAttempts)
	require.NoError(t, err)
	assert.Empty(t, pending, "entries past max attempts stay parked")
	assert.Len(t, repo.All(), 1)

	mem.FailOn(http.MethodDelete, "v1/expenses/e9", nil)
	r.maxAttempts = 5
	n, err = r.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, repo.All())
}
