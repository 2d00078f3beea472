package create

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/internal/models"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ExpenseAdder interface {
	AddExpense(ctx context.Context, req *api.ExpenseRequest) (*models.Expense, error)
}

type Request struct {
	api.ExpenseRequest
}

type Response struct {
	response.Response
	Expense *models.Expense `json:"expense,omitempty"`
}

func New(log *slog.Logger, adder ExpenseAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.expenses.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		x, err := adder.AddExpense(r.Context(), &req.ExpenseRequest)
		if err != nil {
			log.Error("Failed to add expense", sl.Err(err))
			status, resp := response.FromError(err, "failed to add expense")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Expense added", slog.String("id", x.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Expense: x,
		})
	}
}
