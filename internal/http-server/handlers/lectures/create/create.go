package create

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

type LectureAdder interface {
	AddLecture(ctx context.Context, req *api.LectureModelRequest) (*models.LectureModel, error)
}

type Request struct {
	api.LectureModelRequest
}

type Response struct {
	response.Response
	Lecture *models.LectureModel `json:"lecture,omitempty"`
}

func New(log *slog.Logger, adder LectureAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lectures.create.New"

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

		lm, err := adder.AddLecture(r.Context(), &req.LectureModelRequest)
		if err != nil {
			log.Error("Failed to add lecture", sl.Err(err))
			status, resp := response.FromError(err, "failed to add lecture")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Lecture added", slog.String("id", lm.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Lecture: lm,
		})
	}
}
