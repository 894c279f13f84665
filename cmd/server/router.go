package main

import (
	"context"
	"time"

	"vid-pulse/cmd/server/handlers"
	"vid-pulse/cmd/server/handlers/httperr"
	usersHandlers "vid-pulse/cmd/server/handlers/users"
	"vid-pulse/cmd/server/middlewares"
	"vid-pulse/internal/clients/mongo"
	"vid-pulse/internal/config"
	"vid-pulse/internal/logger"
	usersServices "vid-pulse/internal/services/users"
	"vid-pulse/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config, media usersServices.MediaStore) *fiber.App {

	// Initialize validator and register password validation
	v := validator.New()
	if err := crypto.RegisterPasswordValidator(v); err != nil {
		logger.L().Error("failed to register password validator", "err", err)
		panic(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	var v1 fiber.Router
	if cfg.RequestLogging {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	usersRepo, err := mongo.NewUsersRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create users repository", "error", err)
		panic(err)
	}

	authMW := middlewares.Auth(cfg, usersRepo)
	limiterMW := middlewares.BuildRateLimiter(cfg.AuthRatePerMin, RateLimitExpiration)

	usersSvc := usersServices.NewService(usersRepo, media, cfg, logger.L())
	usersH := usersHandlers.NewHandlers(
		usersSvc, v,
		cfg.CookieSecure,
		time.Duration(cfg.AccessTokenMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenDays)*24*time.Hour,
	)

	usersGrp := v1.Group("/users")

	usersGrp.Post("/register", limiterMW, usersH.Register)
	usersGrp.Post("/login", limiterMW, usersH.Login)
	usersGrp.Post("/refresh-token", usersH.Refresh)

	usersGrp.Post("/logout", authMW, usersH.Logout)
	usersGrp.Post("/change-password", authMW, usersH.ChangePassword)
	usersGrp.Get("/me", authMW, usersH.Me)
	usersGrp.Patch("/update-account", authMW, usersH.UpdateAccount)
	usersGrp.Patch("/avatar", authMW, usersH.UpdateAvatar)
	usersGrp.Patch("/cover-image", authMW, usersH.UpdateCoverImage)
	usersGrp.Get("/channel/:username", authMW, usersH.ChannelProfile)
	usersGrp.Get("/watch-history", authMW, usersH.WatchHistory)

	return app
}
