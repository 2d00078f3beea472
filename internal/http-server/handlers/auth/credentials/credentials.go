package credentials

import (
	"context"
	"log/slog"
	"net/http"

	"selectclass/api"
	"selectclass/pkg/middleware/mwAuth"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type CredentialsUpdater interface {
	UpdateCredentials(ctx context.Context, req *api.CredentialsRequest) error
}

type Request struct {
	api.CredentialsRequest
}

func New(log *slog.Logger, updater CredentialsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.credentials.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user", mwAuth.User(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := updater.UpdateCredentials(r.Context(), &req.CredentialsRequest); err != nil {
			log.Error("Failed to update credentials", sl.Err(err))
			status, resp := response.FromError(err, "failed to update credentials")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Credentials updated", slog.String("new_user", req.User))
		w.WriteHeader(http.StatusNoContent)
	}
}
