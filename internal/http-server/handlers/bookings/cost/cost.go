package cost

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

type CostUpdater interface {
	UpdateMaterialCost(ctx context.Context, bookingID, materialID string, req *api.MaterialCostRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.MaterialCostRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitzero"`
}

func New(log *slog.Logger, updater CostUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cost.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		booking, err := updater.UpdateMaterialCost(r.Context(), id, materialID, &req.MaterialCostRequest)
		if err != nil {
			log.Error("Failed to update material cost", sl.Err(err))
			status, resp := response.FromError(err, "failed to update material cost")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Material cost updated", slog.String("id", id), slog.String("material_id", materialID))
		render.JSON(w, r, Response{
			Booking: *booking,
		})
	}
}
