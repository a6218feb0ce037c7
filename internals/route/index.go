package routes

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chitfund_backend/internals/configs"
	"chitfund_backend/internals/middlewares"
	authMember "chitfund_backend/internals/middlewares/auth_member"
	routeDetails "chitfund_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, services routeDetails.Services, cfg *configs.Config) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// Caller identity is optional; it only feeds created_by/updated_by.
	api := app.Group("/api",
		middlewares.GlobalRateLimiter(),
		authMember.CallerJWT(authMember.CallerJWTOpts{
			Secret:              cfg.Auth.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	slog.Info("mounting member routes")
	routeDetails.UserRoutes(api, db, services)

	slog.Info("mounting chit routes")
	routeDetails.ChitRoutes(api, db, services)
}
