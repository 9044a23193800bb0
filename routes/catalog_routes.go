package routes

import (
	"github.com/brightsteps/institute_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func CatalogRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	courses := api.Group("/courses")
	courses.Post("", handlers.CreateCourse)
	courses.Get("", handlers.ListCourses)

	trainers := api.Group("/trainers")
	trainers.Post("", handlers.CreateTrainer)
	trainers.Get("", handlers.ListTrainers)

	consultants := api.Group("/consultants")
	consultants.Post("", handlers.CreateConsultant)
	consultants.Get("", handlers.ListConsultants)

	batches := api.Group("/batches")
	batches.Post("", handlers.CreateBatch)
	batches.Get("", handlers.ListBatches)
}
