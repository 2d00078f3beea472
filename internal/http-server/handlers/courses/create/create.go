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

type CourseSaver interface {
	SaveCourse(ctx context.Context, id string, req *api.CourseTypeRequest) (*models.CourseType, error)
}

type Request struct {
	api.CourseTypeRequest
}

type Response struct {
	response.Response
	Course *models.CourseType `json:"course,omitempty"`
}

func New(log *slog.Logger, saver CourseSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.create.New"

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

		ct, err := saver.SaveCourse(r.Context(), "", &req.CourseTypeRequest)
		if err != nil {
			log.Error("Failed to create course", sl.Err(err))
			status, resp := response.FromError(err, "failed to create course")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Course created", slog.String("id", ct.ID), slog.String("name", ct.Name))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Course: ct,
		})
	}
}
