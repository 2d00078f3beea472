package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/models"
	"selectclass/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type LectureLister interface {
	ListLectures() []models.LectureModel
}

type Response struct {
	response.Response
	Lectures []models.LectureModel `json:"lectures"`
}

func New(log *slog.Logger, lister LectureLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lectures.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		lectures := lister.ListLectures()

		log.Debug("Lectures listed", slog.Int("count", len(lectures)))
		render.JSON(w, r, Response{
			Lectures: lectures,
		})
	}
}
