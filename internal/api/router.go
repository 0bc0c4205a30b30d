package api

import (
	"github.com/NUVersee/AdmissionOfficer-Chatbot/docs"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/api/handlers"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	cfg *config.ServerConfig,
	queryHandler *handlers.QueryHandler,
	sessionHandler *handlers.SessionHandler,
	healthHandler *handlers.HealthHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.RequestLogger(appLogger))

	// Swagger - importing the docs package registers the documentation through init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Service info and health
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)

	// Query routes
	app.Post("/ask", queryHandler.Ask)
	app.Get("/categories", queryHandler.GetCategories)
	app.Post("/detect-category", queryHandler.DetectCategory)

	// Session routes
	app.Post("/clear-memory", sessionHandler.ClearMemory)
	app.Get("/sessions", sessionHandler.ListSessions)
	app.Delete("/sessions/:session_id", sessionHandler.DeleteSession)

	return app
}
