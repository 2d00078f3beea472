package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"selectclass/pkg/sl"
)

// Writer is the subset of the remote store the replayer needs.
type Writer interface {
	Put(ctx context.Context, path string, data any) error
	Delete(ctx context.Context, path string) error
}

type Replayer struct {
	log         *slog.Logger
	repo        Repository
	store       Writer
	interval    time.Duration
	batch       int
	maxAttempts int
}

func NewReplayer(log *slog.Logger, repo Repository, store Writer, interval time.Duration, batch int) *Replayer {
	if batch <= 0 {
		batch = 50
	}

	return &Replayer{
		log:         log,
		repo:        repo,
		store:       store,
		interval:    interval,
		batch:       batch,
		maxAttempts: DefaultMaxAttempts,
	}
}

func (r *Replayer) Run(ctx context.Context) {
	const op = "outbox.Replayer.Run"

	log := r.log.With(slog.String("op", op))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Outbox replayer stopped")
			return
		case <-ticker.C:
			n, err := r.Drain(ctx)
			if err != nil {
				log.Error("Failed to drain outbox", sl.Err(err))
				continue
			}
			if n > 0 {
				log.Info("Outbox entries replayed", slog.Int("count", n))
			}
		}
	}
}

// Drain replays one batch of pending entries and returns how many the store
// accepted.
func (r *Replayer) Drain(ctx context.Context) (int, error) {
	const op = "outbox.Replayer.Drain"

	entries, err := r.repo.Pending(ctx, r.batch, r.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	done := 0
	for _, e := range entries {
		if err := r.apply(ctx, e); err != nil {
			r.log.Warn("Outbox entry failed",
				slog.String("id", e.ID),
				slog.String("method", e.Method),
				slog.String("path", e.Path),
				slog.Int("attempts", e.Attempts+1),
				sl.Err(err),
			)
			if err := r.repo.MarkFailed(ctx, e.ID, err.Error()); err != nil {
				return done, fmt.Errorf("%s: %w", op, err)
			}
			continue
		}

		if err := r.repo.Delete(ctx, e.ID); err != nil {
			return done, fmt.Errorf("%s: %w", op, err)
		}
		done++
	}

	return done, nil
}

func (r *Replayer) apply(ctx context.Context, e Entry) error {
	switch e.Method {
	case http.MethodPut:
		return r.store.Put(ctx, e.Path, e.Body)
	case http.MethodDelete:
		return r.store.Delete(ctx, e.Path)
	default:
		return fmt.Errorf("unsupported method %q", e.Method)
	}
}
