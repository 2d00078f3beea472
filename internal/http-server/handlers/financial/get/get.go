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

type FinancialGetter interface {
	Financial(p analytics.Period) (*analytics.Financial, error)
}

type Response struct {
	response.Response
	Financial *analytics.Financial `json:"financial,omitempty"`
}

func New(log *slog.Logger, getter FinancialGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.financial.get.New"

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

		fin, err := getter.Financial(p)
		if err != nil {
			log.Error("Failed to build financial report", sl.Err(err))
			status, resp := response.FromError(err, "failed to build financial report")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Financial: fin,
		})
	}
}
