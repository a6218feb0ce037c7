package middlewares

import (
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RecoveryMiddleware turns panics into 500s and logs the stack.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			slog.ErrorContext(c.UserContext(), "panic recovered",
				"method", c.Method(), "path", c.Path(), "panic", e, "stack", string(debug.Stack()))
		},
	})
}
