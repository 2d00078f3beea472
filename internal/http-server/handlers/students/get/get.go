package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/models"
	"selectclass/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StudentLister interface {
	ListStudents(query string) []models.Student
}

type Response struct {
	response.Response
	Students []models.Student `json:"students"`
}

// New lists the directory, filtered by ?q= on name or phone digits.
func New(log *slog.Logger, lister StudentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		students := lister.ListStudents(r.URL.Query().Get("q"))

		log.Debug("Students listed", slog.Int("count", len(students)))
		render.JSON(w, r, Response{
			Students: students,
		})
	}
}
