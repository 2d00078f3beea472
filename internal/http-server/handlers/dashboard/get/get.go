package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/analytics"
	"selectclass/internal/http-server/handlers/query"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type DashboardGetter interface {
	Dashboard(year, month int) (*analytics.Dashboard, error)
}

type Response struct {
	response.Response
	Dashboard *analytics.Dashboard `json:"dashboard,omitempty"`
}

func New(log *slog.Logger, getter DashboardGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.get.New"

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

		d, err := getter.Dashboard(p.Year, p.Month)
		if err != nil {
			log.Error("Failed to build dashboard", sl.Err(err))
			status, resp := response.FromError(err, "failed to build dashboard")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Dashboard: d,
		})
	}
}
