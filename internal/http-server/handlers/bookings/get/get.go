package get

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/internal/analytics"
	"selectclass/internal/http-server/handlers/query"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingGetter interface {
	GetBooking(ctx context.Context, id string) (*api.BookingResponse, error)
	ListBookings(f analytics.SearchFilter) ([]api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []api.BookingResponse `json:"bookings,omitempty"`
	Booking  *api.BookingResponse  `json:"booking,omitempty"`
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			// Get by ID
			booking, err := getter.GetBooking(r.Context(), id)
			if err != nil {
				log.Error("Failed to get booking", sl.Err(err))
				status, resp := response.FromError(err, "failed to get booking")
				w.WriteHeader(status)
				render.JSON(w, r, resp)
				return
			}

			log.Info("Booking retrieved", slog.String("id", id))
			responseOK(w, r, booking)
			return
		}

		// List
		f, err := filter(r)
		if err != nil {
			log.Error("Invalid filter", sl.Err(err))
			status, resp := response.FromError(err, "invalid filter")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		bookings, err := getter.ListBookings(f)
		if err != nil {
			log.Error("Failed to list bookings", sl.Err(err))
			status, resp := response.FromError(err, "failed to list bookings")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Bookings retrieved", slog.Int("count", len(bookings)))
		render.JSON(w, r, Response{
			Bookings: bookings,
		})
	}
}

func filter(r *http.Request) (analytics.SearchFilter, error) {
	var (
		f   analytics.SearchFilter
		err error
	)

	if f.Period, err = query.Period(r); err != nil {
		return f, err
	}
	if f.Category, err = query.Category(r); err != nil {
		return f, err
	}
	if f.Limit, err = query.Int(r, "limit"); err != nil {
		return f, err
	}
	f.Term = r.URL.Query().Get("q")

	return f, nil
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: booking,
	})
}
