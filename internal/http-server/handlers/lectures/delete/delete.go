package delete

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type LectureRemover interface {
	RemoveLecture(ctx context.Context, id string) error
}

func New(log *slog.Logger, remover LectureRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lectures.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		if err := remover.RemoveLecture(r.Context(), id); err != nil {
			log.Error("Failed to remove lecture", sl.Err(err))
			status, resp := response.FromError(err, "failed to remove lecture")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Lecture removed", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
