// Package refresh keeps the in-memory snapshot in step with the remote store.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/sl"

	"golang.org/x/sync/errgroup"
)

type Refresher struct {
	log          *slog.Logger
	store        remote.Getter
	state        *state.Store
	interval     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	trigger chan struct{}

	mu     sync.Mutex
	nextID int
	subs   map[int]chan uint64
}

func New(log *slog.Logger, store remote.Getter, st *state.Store, interval, fetchTimeout time.Duration) *Refresher {
	return &Refresher{
		log:          log.With(slog.String("component", "refresh")),
		store:        store,
		state:        st,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
		trigger:      make(chan struct{}, 1),
		subs:         make(map[int]chan uint64),
	}
}

// Trigger asks the loop for a refresh as soon as possible. Requests made while
// one is pending collapse into it.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Subscribe returns a channel that receives the version of every published
// snapshot. Slow subscribers only see the latest version.
func (r *Refresher) Subscribe() (<-chan uint64, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	ch := make(chan uint64, 1)
	r.subs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

func (r *Refresher) publish(version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs {
		select {
		case ch <- version:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- version
		}
	}
}

// Run refreshes immediately, then on every tick or trigger until ctx ends.
// Refreshes never overlap: ticks that fire during a refresh are dropped.
func (r *Refresher) Run(ctx context.Context) {
	r.log.Info("Refresh loop started", slog.String("interval", r.interval.String()))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Refresh loop stopped")
			return
		case <-ticker.C:
		case <-r.trigger:
		}

		r.refreshAndLog(ctx)
	}
}

func (r *Refresher) refreshAndLog(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		r.log.Warn("Refresh incomplete", sl.Err(err))
	}
}

type fetched struct {
	bookings        []models.Booking
	courses         []models.CourseType
	students        []models.Student
	expenses        []models.Expense
	lectures        []models.LectureModel
	legacyLectures  []models.LectureModel
	settings        models.Settings
	settingsFound   bool
	bookingsOK      bool
	coursesOK       bool
	studentsOK      bool
	expensesOK      bool
	lecturesOK      bool
	legacyLectureOK bool
	settingsOK      bool
}

// Refresh fetches every collection in parallel and publishes a new snapshot.
// A collection whose fetch fails keeps its previous contents; the first
// failure is returned after the snapshot is published.
func (r *Refresher) Refresh(ctx context.Context) error {
	const op = "refresh.Refresh"

	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	var f fetched
	var g errgroup.Group

	g.Go(func() error {
		var err error
		f.bookings, err = remote.GetCollection[models.Booking](ctx, r.store, remote.PathBookings)
		f.bookingsOK = err == nil
		return err
	})
	g.Go(func() error {
		var err error
		f.courses, err = remote.GetCollection[models.CourseType](ctx, r.store, remote.PathCourses)
		f.coursesOK = err == nil
		return err
	})
	g.Go(func() error {
		var err error
		f.students, err = remote.GetCollection[models.Student](ctx, r.store, remote.PathStudents)
		f.studentsOK = err == nil
		return err
	})
	g.Go(func() error {
		var err error
		f.expenses, err = remote.GetCollection[models.Expense](ctx, r.store, remote.PathExpenses)
		f.expensesOK = err == nil
		return err
	})
	g.Go(func() error {
		var err error
		f.lectures, err = remote.GetCollection[models.LectureModel](ctx, r.store, remote.PathLectureModels)
		f.lecturesOK = err == nil
		return err
	})
	g.Go(func() error {
		var err error
		f.legacyLectures, err = remote.GetCollection[models.LectureModel](ctx, r.store, remote.PathLegacyLecture)
		f.legacyLectureOK = err == nil
		return err
	})
	g.Go(func() error {
		s := models.DefaultSettings()
		found, err := r.store.Get(ctx, remote.PathSettings, &s)
		f.settings, f.settingsFound, f.settingsOK = s, found, err == nil
		return err
	})

	firstErr := g.Wait()

	snap := r.state.Update(func(s *state.Snapshot) {
		s.RefreshedAt = r.now()

		if f.bookingsOK {
			s.Bookings = f.bookings
		}
		if f.coursesOK {
			s.CourseTypes = sortCourses(f.courses)
		}
		if f.studentsOK {
			s.Students = f.students
		}
		if f.expensesOK {
			s.Expenses = f.expenses
		}
		if f.lecturesOK && f.legacyLectureOK {
			s.LectureModels = mergeLectures(f.lectures, f.legacyLectures)
		}
		if f.settingsOK {
			if f.settingsFound {
				s.Settings = f.settings
			} else {
				s.Settings = models.DefaultSettings()
			}
		}
	})

	r.log.Debug("Snapshot published",
		slog.Uint64("version", snap.Version),
		slog.Int("bookings", len(snap.Bookings)),
		slog.Int("expenses", len(snap.Expenses)),
	)

	r.publish(snap.Version)

	if firstErr != nil {
		return fmt.Errorf("%s: %w", op, firstErr)
	}

	return nil
}

func sortCourses(list []models.CourseType) []models.CourseType {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	return list
}

// mergeLectures lists current lecture models first, then legacy ones whose id
// is not already present, ordered by their order field.
func mergeLectures(current, legacy []models.LectureModel) []models.LectureModel {
	seen := make(map[string]struct{}, len(current))
	out := make([]models.LectureModel, 0, len(current)+len(legacy))

	for _, m := range current {
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}

	for _, m := range legacy {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		if m.Type == "" {
			m.Type = "Palestra"
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })

	return out
}
