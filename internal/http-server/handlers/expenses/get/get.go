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

type LedgerGetter interface {
	Ledger(f analytics.LedgerFilter) (*analytics.Ledger, error)
}

type Response struct {
	response.Response
	Ledger *analytics.Ledger `json:"ledger,omitempty"`
}

// New lists the manual and material expenses of a period and category.
func New(log *slog.Logger, getter LedgerGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.expenses.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var (
			f   analytics.LedgerFilter
			err error
		)

		f.Period, err = query.Period(r)
		if err == nil {
			f.Category, err = query.Category(r)
		}
		if err != nil {
			log.Error("Invalid filter", sl.Err(err))
			status, resp := response.FromError(err, "invalid filter")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		ledger, err := getter.Ledger(f)
		if err != nil {
			log.Error("Failed to build ledger", sl.Err(err))
			status, resp := response.FromError(err, "failed to build ledger")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Ledger built", slog.Int("entries", len(ledger.Entries)))
		render.JSON(w, r, Response{
			Ledger: ledger,
		})
	}
}
