// Package main provides the scenario API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
	"github.com/omnidesk/scenario-engine/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	triggers    *engine.TriggerService
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	triggers *engine.TriggerService,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		triggers:    triggers,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence, a.triggers, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Scenario API")
	})

	app.Get("/nodes", handlers.GetNodeCatalog)

	s := app.Group("/scenarios")
	s.Get("/", handlers.GetScenarios)
	s.Post("/", handlers.CreateScenario)
	s.Get("/:id", handlers.GetScenario)
	s.Patch("/:id", handlers.UpdateScenario)
	s.Delete("/:id", handlers.DeleteScenario)
	s.Get("/:id/triggers", handlers.GetScenarioTriggers)
	s.Get("/:id/executions", handlers.GetScenarioExecutions)

	t := app.Group("/triggers")
	t.Post("/", handlers.CreateTrigger)
	t.Get("/:id", handlers.GetTrigger)
	t.Patch("/:id", handlers.UpdateTrigger)
	t.Delete("/:id", handlers.DeleteTrigger)

	app.Get("/executions/:id", handlers.GetExecution)

	app.Post("/events", handlers.FireEvent)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
