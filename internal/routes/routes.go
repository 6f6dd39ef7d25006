package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/jaytnw/motel-service/internal/handlers"
)

func Setup(app fiber.Router, apiHandler *handlers.APIHandler, healthHandler *handlers.HealthHandler, reportHandler *handlers.ReportHandler, metricsHandler fiber.Handler) {

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Motel Service")
	})

	app.All("/api", apiHandler.Handle)

	health := app.Group("/health")
	health.Get("/", healthHandler.Live)
	health.Get("/ready", healthHandler.Ready)

	app.Get("/metrics", metricsHandler)

	reports := app.Group("/reports")
	reports.Get("/month", reportHandler.MonthWorkbook)
}
