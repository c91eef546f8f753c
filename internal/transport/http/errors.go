package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// errBadRequest marks input that could not be decoded at all.
var errBadRequest = errors.New("bad request")

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }
func (e *badRequestError) Unwrap() error { return errBadRequest }

func badRequest(msg string) error {
	return &badRequestError{msg: msg}
}

// mapDomainError converts errors to an HTTP status, a client-safe message
// and optional field errors.
func mapDomainError(err error) (int, string, map[string]string) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error(), nil

	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, domain.ErrValidation.Error(), verr.Fields

	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error(), nil

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil

	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error(), nil

	default:
		// Unknown error - never leak the cause
		return http.StatusInternalServerError, "internal server error", nil
	}
}

// writeError maps err and writes it. 5xx causes are logged with the request.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, fields := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	respondError(w, status, msg, fields)
}
