package setup

import (
	"client-registry/app"
	"client-registry/handlers"
	"client-registry/middleware"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// sessionRequestsPerMinute bounds each session; ApplyMiddleware bounds each IP.
const sessionRequestsPerMinute = 120

// RegisterRoutes registers all application routes.
// A nil metrics handler leaves /metrics unregistered.
func RegisterRoutes(fiberApp *fiber.App, application *app.App, metricsHandler http.Handler) {
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		if err := application.DB.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if metricsHandler != nil {
		fiberApp.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	// Session-scoped API routes
	api := fiberApp.Group("/api",
		middleware.SessionRequired(application.SessionStore),
		middleware.SessionRateLimit(sessionRequestsPerMinute, time.Minute),
	)

	api.Get("/clients", handlers.SearchClients(application))
	api.Post("/clients", handlers.CreateClient(application))
	api.Get("/clients/last", handlers.GetLastSearch(application))
	api.Get("/clients/selected", handlers.GetSelectedClient(application))
	api.Put("/clients/selected", handlers.SelectClient(application))
	api.Get("/clients/:id", handlers.GetClient(application))
	api.Put("/clients/:id", handlers.UpdateClient(application))
	api.Post("/clients/:id/drop", handlers.DropClient(application))
	api.Delete("/clients/:id", handlers.DeleteClient(application))
}
