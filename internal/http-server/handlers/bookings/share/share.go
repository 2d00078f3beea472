package share

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Sharer interface {
	Share(ctx context.Context, id string) (*api.ShareResponse, error)
}

type Response struct {
	response.Response
	api.ShareResponse
}

func New(log *slog.Logger, sharer Sharer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.share.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		msg, err := sharer.Share(r.Context(), id)
		if err != nil {
			log.Error("Failed to build share message", sl.Err(err))
			status, resp := response.FromError(err, "failed to build share message")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			ShareResponse: *msg,
		})
	}
}
