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

type BookingDeleter interface {
	DeleteBooking(ctx context.Context, id string) error
}

// New removes a booking together with the expenses of its checked materials.
func New(log *slog.Logger, deleter BookingDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.delete.New"

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

		if err := deleter.DeleteBooking(r.Context(), id); err != nil {
			log.Error("Failed to delete booking", sl.Err(err))
			status, resp := response.FromError(err, "failed to delete booking")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Booking deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
