package trigger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
)

type Syncer interface {
	Sync()
}

// New asks for an immediate refresh from the remote store. The refresh runs
// in the background, so the answer is 202.
func New(log *slog.Logger, syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.trigger.New"

		syncer.Sync()

		log.Info("Refresh requested",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		w.WriteHeader(http.StatusAccepted)
	}
}
