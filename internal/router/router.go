package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/residence-admin-api/internal/config"
	"github.com/noah-isme/residence-admin-api/internal/handler"
	"github.com/noah-isme/residence-admin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityLogHandler *handler.ActivityLogHandler
	JWTMiddleware      fiber.Handler
	HealthProbes       map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ActivityLogHandler != nil {
		logs := api.Group("/activity-logs", jwtMiddleware)
		deps.ActivityLogHandler.Register(logs)
	}
}
