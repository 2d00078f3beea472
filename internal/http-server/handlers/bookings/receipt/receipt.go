package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ReceiptRenderer interface {
	Receipt(ctx context.Context, id string) ([]byte, error)
}

// New serves the booking's receipt as a PDF download.
func New(log *slog.Logger, renderer ReceiptRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.receipt.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		pdf, err := renderer.Receipt(r.Context(), id)
		if err != nil {
			log.Error("Failed to render receipt", sl.Err(err))
			status, resp := response.FromError(err, "failed to render receipt")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="recibo-%s.pdf"`, id))
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write(pdf); err != nil {
			log.Error("Failed to write receipt", sl.Err(err))
		}
	}
}
