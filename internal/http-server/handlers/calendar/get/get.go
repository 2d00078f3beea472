package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/http-server/handlers/query"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type CalendarGetter interface {
	CalendarDays(year, month int) ([]int, error)
}

type Response struct {
	response.Response
	Days []int `json:"days"`
}

// New lists the days of ?year&month (current month by default) holding a
// booking.
func New(log *slog.Logger, getter CalendarGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		p, err := query.Period(r)
		if err != nil {
			log.Error("Invalid period", sl.Err(err))
			status, resp := response.FromError(err, "invalid period")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		days, err := getter.CalendarDays(p.Year, p.Month)
		if err != nil {
			log.Error("Failed to get calendar", sl.Err(err))
			status, resp := response.FromError(err, "failed to get calendar")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Days: days,
		})
	}
}
