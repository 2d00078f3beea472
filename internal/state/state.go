// Package state holds the last dataset fetched from the remote store.
package state

import (
	"sync"
	"time"

	"selectclass/internal/models"
)

// Snapshot is one complete view of the remote data. Slices are replaced,
// never mutated, so a Snapshot may be shared between readers.
type Snapshot struct {
	Version       uint64
	RefreshedAt   time.Time
	Bookings      []models.Booking
	CourseTypes   []models.CourseType
	LectureModels []models.LectureModel
	Students      []models.Student
	Expenses      []models.Expense
	Settings      models.Settings
}

type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func New() *Store {
	return &Store{
		snap: Snapshot{
			Bookings:      []models.Booking{},
			CourseTypes:   []models.CourseType{},
			LectureModels: []models.LectureModel{},
			Students:      []models.Student{},
			Expenses:      []models.Expense{},
			Settings:      models.DefaultSettings(),
		},
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap
}

// Update applies fn to a copy of the current snapshot and publishes the
// result under a new version.
func (s *Store) Update(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap
	fn(&next)
	next.Version = s.snap.Version + 1
	s.snap = next

	return next
}
