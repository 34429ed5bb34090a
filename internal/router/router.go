package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Suvodeep90/expertiza-E1792/internal/config"
	"github.com/Suvodeep90/expertiza-E1792/internal/handler"
	"github.com/Suvodeep90/expertiza-E1792/internal/middleware"
	"github.com/Suvodeep90/expertiza-E1792/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradeReportHandler   *handler.GradeReportHandler
	GradeOverrideHandler *handler.GradeOverrideHandler
	JWTMiddleware        fiber.Handler
	HealthChecks         map[string]handler.DependencyCheck
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	grades := app.Group(middleware.GradesPathPrefix, jwtMiddleware)

	if deps.GradeReportHandler != nil {
		deps.GradeReportHandler.Register(grades)
	}

	if deps.GradeOverrideHandler != nil {
		deps.GradeOverrideHandler.Register(grades,
			middleware.RequireInstructor(),
			middleware.RateLimit("grade-writes", cfg.WriteRateLimit, time.Minute),
		)
	}
}
