package routes

import (
	"github.com/brightsteps/institute_backend/handlers"
	"github.com/brightsteps/institute_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments")
	payments.Get("/:ledgerId", handlers.GetLedger)
	payments.Get("/:ledgerId/receipt", handlers.GetLedgerReceipt)

	mutations := payments.Group("", middleware.ActingStaff())
	mutations.Post("/students/:studentId/initial", handlers.RecordInitialPayment)
	mutations.Post("/:ledgerId/installments/:emiNumber", handlers.RecordInstallmentPayment)
}
