package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/internal/storage/remote/remotetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(mem *remotetest.Memory) {
	mem.Seed("v1/appointments/b1", models.Booking{ID: "b1", Title: "Curso Vip", Value: 900})
	mem.Seed("v1/appointments/b2", models.Booking{ID: "b2", Title: "Palestra", Value: 500})
	mem.Seed("v1/courses/c1", models.CourseType{ID: "c1", Name: "B", Order: 2})
	mem.Seed("v1/courses/c2", models.CourseType{ID: "c2", Name: "A", Order: 1})
	mem.Seed("v1/students/s1", models.Student{ID: "s1", Name: "Ana"})
	mem.Seed("v1/expenses/e1", models.Expense{ID: "e1", Title: "Aluguel", Amount: 100})
	mem.Seed("v1/lecture_models/l1", models.LectureModel{ID: "l1", Name: "Oratória", Type: "Palestra", Order: 1})
	mem.Seed("palestras_v1/l1", models.LectureModel{ID: "l1", Name: "Oratória (antiga)"})
	mem.Seed("palestras_v1/l0", models.LectureModel{ID: "l0", Name: "Liderança"})
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	mem := remotetest.NewMemory()
	seed(mem)

	st := state.New()
	r := New(discardLogger(), mem, st, time.Hour, time.Second)

	require.NoError(t, r.Refresh(context.Background()))

	snap := st.Snapshot()
	assert.Equal(t, uint64(1), snap.Version)
	assert.Len(t, snap.Bookings, 2)
	require.Len(t, snap.CourseTypes, 2)
	assert.Equal(t, "A", snap.CourseTypes[0].Name, "courses are ordered by their order field")
	assert.Len(t, snap.Students, 1)
	assert.Len(t, snap.Expenses, 1)

	require.Len(t, snap.LectureModels, 2)
	assert.Equal(t, "Liderança", snap.LectureModels[0].Name)
	assert.Equal(t, "Palestra", snap.LectureModels[0].Type)
	assert.Equal(t, "Oratória", snap.LectureModels[1].Name)

	assert.Equal(t, models.DefaultSettings(), snap.Settings)
}

func TestRefreshKeepsCollectionOnFailure(t *testing.T) {
	mem := remotetest.NewMemory()
	seed(mem)

	st := state.New()
	r := New(discardLogger(), mem, st, time.Hour, time.Second)
	require.NoError(t, r.Refresh(context.Background()))

	mem.FailOn(http.MethodGet, remote.PathBookings, errors.New("network down"))
	mem.Seed("v1/students/s2", models.Student{ID: "s2", Name: "Bia"})

	err := r.Refresh(context.Background())
	require.Error(t, err)

	snap := st.Snapshot()
	assert.Len(t, snap.Bookings, 2, "failed collection keeps previous contents")
	assert.Len(t, snap.Students, 2, "healthy collections are replaced")
}

func TestRefreshEmptiesRemovedCollection(t *testing.T) {
	mem := remotetest.NewMemory()
	seed(mem)

	st := state.New()
	r := New(discardLogger(), mem, st, time.Hour, time.Second)
	require.NoError(t, r.Refresh(context.Background()))

	require.NoError(t, mem.Delete(context.Background(), remote.PathExpenses))
	require.NoError(t, r.Refresh(context.Background()))

	assert.Empty(t, st.Snapshot().Expenses)
}

func TestRunHonoursTriggerAndSubscribers(t *testing.T) {
	mem := remotetest.NewMemory()
	seed(mem)

	st := state.New()
	r := New(discardLogger(), mem, st, time.Hour, time.Second)

	updates, cancelSub := r.Subscribe()
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case v := <-updates:
		assert.Equal(t, uint64(1), v)
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh not published")
	}

	mem.Seed("v1/appointments/b3", models.Booking{ID: "b3"})
	r.Trigger()

	select {
	case v := <-updates:
		assert.Equal(t, uint64(2), v)
	case <-time.After(2 * time.Second):
		t.Fatal("triggered refresh not published")
	}

	assert.Len(t, st.Snapshot().Bookings, 3)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}
