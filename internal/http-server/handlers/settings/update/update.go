package update

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

type SettingsUpdater interface {
	UpdateSettings(ctx context.Context, req *api.SettingsRequest) (*models.Settings, error)
}

type Request struct {
	api.SettingsRequest
}

type Response struct {
	response.Response
	Settings *models.Settings `json:"settings,omitempty"`
}

func New(log *slog.Logger, updater SettingsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.update.New"

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

		s, err := updater.UpdateSettings(r.Context(), &req.SettingsRequest)
		if err != nil {
			log.Error("Failed to update settings", sl.Err(err))
			status, resp := response.FromError(err, "failed to update settings")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Settings updated")
		render.JSON(w, r, Response{
			Settings: s,
		})
	}
}
