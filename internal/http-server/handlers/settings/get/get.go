package get

import (
	"log/slog"
	"net/http"

	"selectclass/internal/models"
	"selectclass/pkg/response"

	"github.com/go-chi/render"
)

type SettingsGetter interface {
	GetSettings() models.Settings
}

type Response struct {
	response.Response
	Settings models.Settings `json:"settings"`
}

func New(_ *slog.Logger, getter SettingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{
			Settings: getter.GetSettings(),
		})
	}
}
