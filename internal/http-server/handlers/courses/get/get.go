package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/models"
	"selectclass/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type CourseLister interface {
	ListCourses() []models.CourseType
}

type Response struct {
	response.Response
	Courses []models.CourseType `json:"courses"`
}

func New(log *slog.Logger, lister CourseLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		courses := lister.ListCourses()

		log.Debug("Courses listed", slog.Int("count", len(courses)))
		render.JSON(w, r, Response{
			Courses: courses,
		})
	}
}
