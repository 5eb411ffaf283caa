// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapError for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	userdomain "github.com/ghuser/inventory/services/user/domain"
)

// Machine-readable error codes returned in the "code" field.
const (
	CodeNotFound           = "not_found"
	CodeAlreadyExists      = "already_exists"
	CodeInvalid            = "invalid"
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeInternal           = "internal"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become 500 with a generic message; the original error
// is logged with the request context and reported to Sentry.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "error", err)
		telemetry.CaptureError(r.Context(), err)
	}

	body := httpx.ErrorBody{Error: httpx.SafeMessage(err, status), Code: code}
	var ve *itemdomain.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	httpx.JSON(w, status, body)
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound, CodeNotFound // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists),
		errors.Is(err, userdomain.ErrUsernameTaken):
		return http.StatusBadRequest, CodeAlreadyExists // 400
	case errors.Is(err, itemdomain.ErrInvalidItem),
		errors.Is(err, userdomain.ErrInvalidUser):
		return http.StatusBadRequest, CodeInvalid // 400
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, CodeUnauthenticated // 401
	case errors.Is(err, userdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials // 401
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeInvalidToken // 401
	case errors.Is(err, userdomain.ErrUserNotFound):
		return http.StatusNotFound, CodeNotFound // 404
	default:
		return http.StatusInternalServerError, CodeInternal // 500
	}
}
