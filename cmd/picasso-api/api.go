// Package main provides the Picasso configuration API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/longhornrumble/picasso-config-builder/pkg/deploy"
	"github.com/longhornrumble/picasso-config-builder/pkg/eventbus"
	"github.com/longhornrumble/picasso-config-builder/pkg/storage"
	"github.com/longhornrumble/picasso-config-builder/pkg/web"
)

type API struct {
	logger   *slog.Logger
	storage  storage.Storage
	eventBus eventbus.EventBus
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	st storage.Storage,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:   logger,
		storage:  st,
		eventBus: eventBus,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	manager := web.NewSessionManager(a.storage, a.eventBus, a.logger)
	deployer := deploy.NewService(a.storage, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(manager, deployer, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Picasso Config API")
	})

	handlers.RegisterRoutes(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
