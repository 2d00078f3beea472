package payment

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

type PaymentAdder interface {
	AddPayment(ctx context.Context, id string, req *api.PaymentRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.PaymentRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitzero"`
}

func New(log *slog.Logger, adder PaymentAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.payment.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		booking, err := adder.AddPayment(r.Context(), id, &req.PaymentRequest)
		if err != nil {
			log.Error("Failed to add payment", sl.Err(err))
			status, resp := response.FromError(err, "failed to add payment")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Payment added",
			slog.String("id", id),
			slog.String("status", string(booking.Booking.PaymentStatus)),
		)

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, booking)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: *booking,
	})
}
