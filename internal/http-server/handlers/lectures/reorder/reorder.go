package reorder

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/internal/models"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type LectureReorderer interface {
	ReorderLectures(ctx context.Context, ids []string) ([]models.LectureModel, error)
}

type Request struct {
	api.ReorderRequest
}

type Response struct {
	response.Response
	Lectures []models.LectureModel `json:"lectures,omitempty"`
}

func New(log *slog.Logger, reorderer LectureReorderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lectures.reorder.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if len(req.IDs) == 0 {
			log.Error("ids is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "ids is required"))
			return
		}

		lectures, err := reorderer.ReorderLectures(r.Context(), req.IDs)
		if err != nil {
			log.Error("Failed to reorder lectures", sl.Err(err))
			status, resp := response.FromError(err, "failed to reorder lectures")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Lectures reordered", slog.Int("count", len(lectures)))
		render.JSON(w, r, Response{
			Lectures: lectures,
		})
	}
}
