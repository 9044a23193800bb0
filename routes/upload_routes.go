package routes

import (
	"github.com/brightsteps/institute_backend/handlers"
	"github.com/brightsteps/institute_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.ActingStaff())
	uploads.Get("/proof-signature", handlers.GenerateProofUploadSignature)
}
