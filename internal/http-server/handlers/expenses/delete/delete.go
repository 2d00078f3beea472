package delete

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ExpenseDeleter interface {
	DeleteExpense(ctx context.Context, id string) error
}

// New removes an expense and unchecks the material it was recorded for.
func New(log *slog.Logger, deleter ExpenseDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.expenses.delete.New"

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

		if err := deleter.DeleteExpense(r.Context(), id); err != nil {
			log.Error("Failed to delete expense", sl.Err(err))
			status, resp := response.FromError(err, "failed to delete expense")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Expense deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
