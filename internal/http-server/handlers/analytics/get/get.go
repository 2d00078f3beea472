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

type ReportGetter interface {
	Analytics(f analytics.Filter) (*analytics.Report, error)
}

type Response struct {
	response.Response
	Report *analytics.Report `json:"report,omitempty"`
}

func New(log *slog.Logger, getter ReportGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analytics.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		f, err := filter(r)
		if err != nil {
			log.Error("Invalid filter", sl.Err(err))
			status, resp := response.FromError(err, "invalid filter")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		rep, err := getter.Analytics(f)
		if err != nil {
			log.Error("Failed to build report", sl.Err(err))
			status, resp := response.FromError(err, "failed to build report")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Report: rep,
		})
	}
}

func filter(r *http.Request) (analytics.Filter, error) {
	var (
		f   analytics.Filter
		err error
	)

	if f.Year, err = query.Int(r, "year"); err != nil {
		return f, err
	}
	if f.Month, err = query.Int(r, "month"); err != nil {
		return f, err
	}
	if f.Category, err = query.Category(r); err != nil {
		return f, err
	}
	f.City = r.URL.Query().Get("city")

	return f, nil
}
