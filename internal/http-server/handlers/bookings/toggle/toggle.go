package toggle

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

type MaterialToggler interface {
	ToggleMaterial(ctx context.Context, bookingID, materialID string) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitzero"`
}

func New(log *slog.Logger, toggler MaterialToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.toggle.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		materialID := chi.URLParam(r, "materialId")
		if id == "" || materialID == "" {
			log.Error("id or materialId is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id and materialId are required"))
			return
		}

		booking, err := toggler.ToggleMaterial(r.Context(), id, materialID)
		if err != nil {
			log.Error("Failed to toggle material", sl.Err(err))
			status, resp := response.FromError(err, "failed to toggle material")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Material toggled", slog.String("id", id), slog.String("material_id", materialID))
		render.JSON(w, r, Response{
			Booking: *booking,
		})
	}
}
