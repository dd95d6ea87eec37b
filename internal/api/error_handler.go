package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/api/handler"
	"github.com/autox/marketplace-client/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the response envelope: {"success": false, "message": "...", "errors": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, details := resolveError(err, log, c)
		env := domain.Envelope[any]{Success: false, Message: msg}
		for _, d := range details {
			raw, _ := json.Marshal(d)
			env.Errors = append(env.Errors, raw)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, env)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []domain.ErrorDetail) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Validation failed", ve.Details
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", nil
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, "Not authorized", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access forbidden", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "User already exists with this email", nil
	case errors.Is(err, domain.ErrAlreadyPartner):
		return http.StatusConflict, "Partner profile already exists", nil
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error(), nil
	case errors.Is(err, domain.ErrFeedbackNotAllowed):
		return http.StatusUnprocessableEntity, "Feedback can only be added to completed requests", nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error", nil
}
