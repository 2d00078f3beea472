package search

import (
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Searcher interface {
	QuickSearch(term string) ([]api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []api.BookingResponse `json:"bookings"`
}

// New answers the search box. Terms shorter than two characters return no
// results.
func New(log *slog.Logger, searcher Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.search.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		found, err := searcher.QuickSearch(r.URL.Query().Get("q"))
		if err != nil {
			log.Error("Failed to search bookings", sl.Err(err))
			status, resp := response.FromError(err, "failed to search bookings")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		render.JSON(w, r, Response{
			Bookings: found,
		})
	}
}
