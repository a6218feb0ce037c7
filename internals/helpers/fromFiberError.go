package helper

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"chitfund_backend/internals/helpers/apperr"
)

func statusOfKind(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindInvalidArgument:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError renders a service or fiber error with the standard error body.
// Service errors report their kind as error_code. 5xx bodies carry only the
// message; the wrapped cause goes to the log.
func FromError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		status := statusOfKind(ae.Kind)
		if status >= 500 {
			slog.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "err", err)
			return jsonErrorWithCode(c, status, ae.Message, string(ae.Kind))
		}
		return jsonErrorWithCode(c, status, ae.Error(), string(ae.Kind))
	}

	slog.ErrorContext(c.UserContext(), "unhandled error",
		"method", c.Method(), "path", c.Path(), "err", err)
	return JsonError(c, fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message)
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
