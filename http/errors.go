package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jwhitaker/courier"
)

// errorStatusCode maps domain error codes to HTTP status codes.
func errorStatusCode(code string) int {
	switch code {
	case courier.ENOTFOUND:
		return http.StatusNotFound
	case courier.EINVALID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse represents the JSON error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleError converts domain errors to appropriate HTTP responses.
// It logs internal errors and returns user-safe messages.
func HandleError(c echo.Context, logger *slog.Logger, err error) error {
	code := courier.ErrorCode(err)
	message := courier.ErrorMessage(err)
	status := errorStatusCode(code)

	// Log internal errors with full details
	if code == courier.EINTERNAL {
		logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
			slog.String("method", c.Request().Method),
		)
		// Don't expose internal error details to clients
		message = "An internal error occurred."
	}

	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// ErrorHandlerMiddleware provides centralized error handling.
// It converts domain errors to appropriate HTTP responses.
func ErrorHandlerMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Pass Echo's own errors through to its handler
			if he, ok := err.(*echo.HTTPError); ok {
				if he.Code >= 500 {
					logger.Error("http error",
						slog.Int("status", he.Code),
						slog.Any("message", he.Message),
						slog.String("path", c.Path()),
					)
				}
				return err
			}

			if isCourierError(err) {
				return HandleError(c, logger, err)
			}

			// Wrap unexpected errors as internal errors
			wrapped := courier.Internal("An unexpected error occurred", err)
			return HandleError(c, logger, wrapped)
		}
	}
}

// isCourierError checks if the error is a courier.Error type.
func isCourierError(err error) bool {
	_, ok := err.(*courier.Error)
	return ok
}
