package login

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"selectclass/api"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Authenticator interface {
	Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error)
}

type Request struct {
	api.LoginRequest
}

type Response struct {
	response.Response
	api.LoginResponse
}

func New(log *slog.Logger, authenticator Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

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

		if strings.TrimSpace(req.User) == "" || req.Pass == "" {
			log.Error("user or pass is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user and pass are required"))
			return
		}

		res, err := authenticator.Login(r.Context(), &req.LoginRequest)
		if err != nil {
			log.Warn("Login failed", slog.String("user", req.User), sl.Err(err))
			status, resp := response.FromError(err, "failed to log in")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("User logged in", slog.String("user", req.User))
		render.JSON(w, r, Response{
			LoginResponse: *res,
		})
	}
}
