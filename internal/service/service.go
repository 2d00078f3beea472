package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"selectclass/api"
	"selectclass/internal/lock"
	"selectclass/internal/models"
	"selectclass/internal/outbox"
	"selectclass/internal/reconcile"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/google/uuid"
)

const DefaultAddress = "Rua Francisco Antônio Miranda, N°58 - Guarulhos SP. A nossa sala é N°6, tem um interfone do lado da porta é só pressionar o n° 6!"

type Service struct {
	log      *slog.Logger
	store    remote.Store
	locker   lock.Locker
	outbox   outbox.Repository
	state    *state.Store
	notifier Notifier
	tokens   TokenIssuer
	opts     Options
	now      func() time.Time
	newID    func() string
}

// Notifier asks the refresh loop for an early refresh.
type Notifier interface {
	Trigger()
}

type TokenIssuer interface {
	Issue(user string) (string, time.Time, error)
}

type Options struct {
	Location        *time.Location
	AlertWindowDays int
	DefaultAddress  string
	DefaultUser     string
	DefaultPass     string
	LockTTL         time.Duration
}

func NewService(
	log *slog.Logger,
	store remote.Store,
	locker lock.Locker,
	ob outbox.Repository,
	st *state.Store,
	notifier Notifier,
	tokens TokenIssuer,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.AlertWindowDays <= 0 {
		opts.AlertWindowDays = reconcile.DefaultAlertWindowDays
	}
	if opts.DefaultAddress == "" {
		opts.DefaultAddress = DefaultAddress
	}
	if opts.DefaultUser == "" {
		opts.DefaultUser, opts.DefaultPass = "admin", "1234"
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}

	return &Service{
		log:      log,
		store:    store,
		locker:   locker,
		outbox:   ob,
		state:    st,
		notifier: notifier,
		tokens:   tokens,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Sync asks for a refresh of the snapshot.
func (s *Service) Sync() {
	s.notifier.Trigger()
}

func (s *Service) today() time.Time {
	return s.now().In(s.opts.Location)
}

// parseDate reads a DateLayout date as local midnight.
func (s *Service) parseDate(field, v string) (time.Time, error) {
	t, err := time.ParseInLocation(api.DateLayout, strings.TrimSpace(v), s.opts.Location)
	if err != nil {
		return time.Time{}, response.Invalid(field, "expected YYYY-MM-DD")
	}

	return t, nil
}

// withBookingLock serialises commands on one booking.
func (s *Service) withBookingLock(ctx context.Context, id string, fn func() error) error {
	const op = "service.withBookingLock"

	key := "booking:" + id

	token, ok, err := s.locker.Lock(ctx, key, s.opts.LockTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, response.ErrLocked)
	}

	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Error("Failed to release lock", slog.String("key", key), sl.Err(err))
		}
	}()

	return fn()
}

// withBookingLocks holds the locks of every booking in ids while fn runs.
func (s *Service) withBookingLocks(ctx context.Context, ids []string, fn func() error) error {
	if len(ids) == 0 {
		return fn()
	}

	return s.withBookingLock(ctx, ids[0], func() error {
		return s.withBookingLocks(ctx, ids[1:], fn)
	})
}

// park stores a failed secondary write for the outbox replayer.
func (s *Service) park(ctx context.Context, method, path string, data any, cause error) {
	const op = "service.park"

	log := s.log.With(
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
	)

	var (
		e   outbox.Entry
		err error
	)

	switch method {
	case http.MethodPut:
		e, err = outbox.NewPut(s.newID(), path, data, s.now())
	default:
		e = outbox.NewDelete(s.newID(), path, s.now())
	}

	if err == nil {
		err = s.outbox.Enqueue(context.WithoutCancel(ctx), e)
	}

	if err != nil {
		log.Error("Failed to park write, it is lost", slog.String("cause", cause.Error()), sl.Err(err))
		return
	}

	log.Warn("Write parked in outbox", sl.Err(cause))
}

func (s *Service) putOrPark(ctx context.Context, path string, data any) {
	if err := s.store.Put(ctx, path, data); err != nil {
		s.park(ctx, http.MethodPut, path, data, err)
	}
}

func (s *Service) deleteOrPark(ctx context.Context, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		s.park(ctx, http.MethodDelete, path, nil, err)
	}
}

// published applies a local change to the snapshot so reads see a write
// before the next refresh, then asks for that refresh.
func (s *Service) published(fn func(*state.Snapshot)) {
	s.state.Update(fn)
	s.notifier.Trigger()
}

func upsert[T any](list []T, item T, id func(T) string) []T {
	out := make([]T, 0, len(list)+1)
	found := false
	for _, cur := range list {
		if id(cur) == id(item) {
			out = append(out, item)
			found = true
			continue
		}
		out = append(out, cur)
	}

	if !found {
		out = append(out, item)
	}

	return out
}

func without[T any](list []T, key string, id func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, cur := range list {
		if id(cur) != key {
			out = append(out, cur)
		}
	}

	return out
}

func bookingKey(b models.Booking) string { return b.ID }
func expenseKey(e models.Expense) string { return e.ID }
func studentKey(st models.Student) string { return st.ID }
func courseKey(c models.CourseType) string { return c.ID }
func lectureKey(l models.LectureModel) string { return l.ID }
