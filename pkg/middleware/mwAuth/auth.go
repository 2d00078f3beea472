package mwAuth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"selectclass/internal/auth"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

type ctxKey struct{}

// User returns the authenticated user name stored by New.
func User(ctx context.Context) string {
	u, _ := ctx.Value(ctxKey{}).(string)
	return u
}

// New rejects requests without a valid "Authorization: Bearer" token.
func New(log *slog.Logger, parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.mwAuth.New"

			tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tok == "" {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "missing bearer token"))
				return
			}

			claims, err := parser.Parse(tok)
			if err != nil {
				log.Warn("Rejected token",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}
