package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "cadence/internal/platform/errors"
)

// StatusOf maps application errors onto HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrTimerConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPlanLimit):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrCommitInFlight):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrPersistence):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every failure as {"error": message}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := StatusOf(err)
		message := err.Error()

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
			if code == http.StatusInternalServerError {
				message = http.StatusText(code)
			}
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, echo.Map{"error": message})
		}
		if sendErr != nil {
			logger.Warn("write error response", "error", sendErr)
		}
	}
}

// BadRequest wraps a binding or parsing failure as invalid input.
func BadRequest(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
}
