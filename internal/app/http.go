package app

import (
	"errors"

	"thoughtforest/internal/handlers"
	"thoughtforest/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewFiberApp builds the HTTP API.
func (c *Container) NewFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "thoughtforest",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(c.Metrics.Middleware())

	// summarizer state is reported, never checked
	handlers.NewHealthHandler(map[string]handlers.Check{"database": c.Ping}).
		WithDetail("summarizer", func() string { return c.Gateway.State().String() }).
		RegisterRoutes(app)
	app.Get("/metrics", c.Metrics.Handler())

	handlers.NewTriggerHandler(c.Weekly).
		RegisterRoutes(app, middleware.TriggerTokenRequired(c.Config.TriggerToken))

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(c.Auth)

	handlers.NewAuthHandler(c.Auth).RegisterRoutes(apiV1, auth)
	handlers.NewUserHandler(c.Profiles, c.Auth).RegisterRoutes(apiV1, auth)
	handlers.NewTranscriptionHandler(c.TranscriptionService).RegisterRoutes(apiV1, auth)
	handlers.NewSummaryHandler(c.SummaryService).RegisterRoutes(apiV1, auth)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
