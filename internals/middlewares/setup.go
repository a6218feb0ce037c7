package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"chitfund_backend/internals/configs"
	"chitfund_backend/internals/metrics"
	"chitfund_backend/internals/middlewares/logger"
)

// HTTP timeout guard, kept in line with the DB statement_timeout.
const requestTimeout = 5 * time.Second

// SetupMiddlewares installs the app-wide chain. Order matters: recovery wraps
// everything, the request id must exist before the access log reads it.
func SetupMiddlewares(app *fiber.App, cfg *configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestID(requestTimeout))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(cfg.Server.CorsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(metrics.Middleware())
}
