package save

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/internal/models"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type StudentSaver interface {
	SaveStudent(ctx context.Context, id string, req *api.StudentRequest) (*models.Student, error)
}

type Request struct {
	api.StudentRequest
}

type Response struct {
	response.Response
	Student *models.Student `json:"student,omitempty"`
}

// New creates a student on POST /students and overwrites one on
// PUT /students/{id}.
func New(log *slog.Logger, saver StudentSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.save.New"

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

		id := chi.URLParam(r, "id")

		st, err := saver.SaveStudent(r.Context(), id, &req.StudentRequest)
		if err != nil {
			log.Error("Failed to save student", sl.Err(err))
			status, resp := response.FromError(err, "failed to save student")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Student saved", slog.String("id", st.ID))

		if id == "" {
			w.WriteHeader(http.StatusCreated)
		}
		render.JSON(w, r, Response{
			Student: st,
		})
	}
}
