package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/analytics"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AgendaGetter interface {
	Agenda(date string) ([]analytics.AgendaItem, error)
}

type Response struct {
	response.Response
	Items []analytics.AgendaItem `json:"items"`
}

// New lists the bookings of ?date=YYYY-MM-DD, today when omitted.
func New(log *slog.Logger, getter AgendaGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.agenda.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		items, err := getter.Agenda(r.URL.Query().Get("date"))
		if err != nil {
			log.Error("Failed to get agenda", sl.Err(err))
			status, resp := response.FromError(err, "failed to get agenda")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Items: items,
		})
	}
}
