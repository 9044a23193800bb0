package routes

import (
	"github.com/brightsteps/institute_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PendingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/pending-payments", handlers.ListPendingPayments)
}
