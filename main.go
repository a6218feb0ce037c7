package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"chitfund_backend/internals/configs"
	database "chitfund_backend/internals/databases"
	helper "chitfund_backend/internals/helpers"
	middlewares "chitfund_backend/internals/middlewares"
	routes "chitfund_backend/internals/route"
	routeDetails "chitfund_backend/internals/route/details"
	"chitfund_backend/internals/seeds"
)

func main() {
	cfg := configs.Load()
	if _, err := configs.InitLogger(cfg.Log); err != nil {
		slog.Error("logger init failed", "err", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.ErrorHandler,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	middlewares.SetupMiddlewares(app, cfg)

	// DB connect + pool + schema
	db, err := database.Open(cfg.Database)
	if err != nil {
		slog.Error("database open failed", "err", err)
		os.Exit(1)
	}
	database.TunePool(db)
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}
	caps := database.Probe(db)
	services := routeDetails.NewServices(caps, cfg)

	if cfg.Database.SeedFile != "" {
		seeds.RunAllSeeds(context.Background(), db, services.Members, cfg.Database.SeedFile)
	}

	routes.SetupRoutes(app, db, services, cfg)

	// Keep-alive & connection timeouts
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		slog.Info("listening", "port", cfg.Server.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Server.Port); err != nil {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown, then close the DB pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	database.Close(db)
}
