package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edupulse/dropout-risk-api/internal/config"
	"github.com/edupulse/dropout-risk-api/internal/handler"
	"github.com/edupulse/dropout-risk-api/internal/middleware"
	"github.com/edupulse/dropout-risk-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler    *handler.StudentHandler
	PredictionHandler *handler.PredictionHandler
	AdminHandler      *handler.AdminHandler
	ModelStatus       handler.ModelStatus
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.ModelStatus))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students"))
	}

	if deps.PredictionHandler != nil {
		deps.PredictionHandler.Register(api.Group("", middleware.RateLimit("predict", 30, time.Minute)))
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin", "counselor"))
		deps.AdminHandler.Register(admin)
	}
}
