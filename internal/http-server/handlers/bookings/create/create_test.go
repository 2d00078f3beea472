package create

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"selectclass/api"
	"selectclass/internal/models"
	"selectclass/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type creatorFunc func(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error)

func (f creatorFunc) CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
	return f(ctx, req)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateBooking(t *testing.T) {
	var got *api.BookingRequest
	h := New(discard(), creatorFunc(func(_ context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
		got = req
		return &api.BookingResponse{Booking: models.Booking{ID: "b1", Title: req.Title}}, nil
	}))

	body := `{"title":"Curso Vip","student":"Ana","whatsapp":"11999998888","city":"Guarulhos","state":"SP","date":"2026-03-20","deposit":"300,00"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Ana", got.Student)
	assert.InDelta(t, 300, got.Deposit.Float64(), 0.001)

	var res Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "b1", res.Booking.Booking.ID)
	assert.Empty(t, res.Code)
}

func TestCreateBookingErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, response.BAD_REQUEST},
		{"validation", `{}`, response.Invalid("student", "is required"), http.StatusBadRequest, response.VALIDATION},
		{"store down", `{}`, fmt.Errorf("put: %w", response.ErrStoreUnavailable), http.StatusBadGateway, response.STORE_UNAVAILABLE},
		{"unexpected", `{}`, fmt.Errorf("boom"), http.StatusInternalServerError, response.FAILED_REQUEST},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(discard(), creatorFunc(func(context.Context, *api.BookingRequest) (*api.BookingResponse, error) {
				return nil, tc.err
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(tc.body)))

			require.Equal(t, tc.status, w.Code)

			var res response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, string(tc.code), res.Code)
		})
	}
}
