package response

import (
	"errors"
	"net/http"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	VALIDATION        ErrCode = "VALIDATION_FAILED"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	LOCKED            ErrCode = "LOCKED"
	CONFLICT          ErrCode = "CONFLICT"
	UNAUTHORIZED      ErrCode = "UNAUTHORIZED"
	STORE_UNAVAILABLE ErrCode = "STORE_UNAVAILABLE"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("resource not found")
	ErrLocked           = errors.New("resource is locked")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("invalid credentials")
	ErrStoreUnavailable = errors.New("remote store unavailable")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// FromError maps a service error to the HTTP status and body a handler
// should answer with. fallback is the message used for unexpected errors.
func FromError(err error, fallback string) (int, Response) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Error(string(VALIDATION), verr.Error())
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, Error(string(BAD_REQUEST), "bad request")
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Error(string(NOT_FOUND), "resource not found")
	case errors.Is(err, ErrLocked):
		return http.StatusLocked, Error(string(LOCKED), "resource is locked")
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, Error(string(CONFLICT), "conflict")
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, Error(string(UNAUTHORIZED), "invalid credentials")
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusBadGateway, Error(string(STORE_UNAVAILABLE), "remote store unavailable")
	default:
		return http.StatusInternalServerError, Error(string(FAILED_REQUEST), fallback)
	}
}
