package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/brightsteps/institute_backend/notifications"
	"github.com/brightsteps/institute_backend/services"
	"github.com/brightsteps/institute_backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

const dateLayout = "2006-01-02"

type InstallmentTermRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date" validate:"required"`
}

type InitialPaymentRequest struct {
	TotalFee        decimal.Decimal          `json:"total_fee"`
	UpfrontPaid     decimal.Decimal          `json:"upfront_paid"`
	ProofURL        string                   `json:"proof_url"`
	InstallmentPlan int                      `json:"installment_plan" validate:"min=0,max=4"`
	Installments    []InstallmentTermRequest `json:"installments" validate:"dive"`
}

type InstallmentPaymentRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
	PaidDate   string          `json:"paid_date" validate:"required"`
	ProofURL   string          `json:"proof_url"`
}

// RecordInitialPayment creates (or, while no installment has been collected
// yet, re-enters) a student's payment ledger: the fee baseline, the up-front
// payment, and the installment schedule covering the balance.
func RecordInitialPayment(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	var req InitialPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	input := services.InitialPaymentInput{
		TotalFee:    req.TotalFee,
		UpfrontPaid: req.UpfrontPaid,
		ProofURL:    req.ProofURL,
		Plan:        req.InstallmentPlan,
	}
	for i, term := range req.Installments {
		dueDate, err := time.Parse(dateLayout, term.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("EMI %d due date must be formatted as %s", i+1, dateLayout),
			})
		}
		input.Schedule = append(input.Schedule, services.InstallmentTerm{Amount: term.Amount, DueDate: dueDate})
	}

	var ledger models.PaymentLedger
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ?", student.ID).First(&ledger).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ledger = models.PaymentLedger{StudentID: student.ID}
		case err != nil:
			return err
		default:
			for _, slot := range ledger.Slots() {
				if slot.PaidAmount != nil {
					return &services.ValidationError{Field: "student_id", Message: "installments have already been collected on this ledger"}
				}
			}
		}

		if err := services.ApplyInitialPayment(&ledger, input, time.Now()); err != nil {
			return err
		}

		if ledger.Code == "" {
			code, err := utils.NextSequentialCode(tx, &models.PaymentLedger{}, "PMT")
			if err != nil {
				return err
			}
			ledger.Code = code
		}

		if err := tx.Save(&ledger).Error; err != nil {
			return err
		}

		if err := services.ResyncPendingProjection(tx, ledger.ID); err != nil {
			// The ledger save stands; the projection stays stale until
			// the next triggering event or the nightly sweep.
			log.Printf("🔥 Pending projection resync failed for ledger %s: %v", ledger.ID, err)
		}
		return nil
	})
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ledger)
}

// RecordInstallmentPayment collects one installment payment against the next
// payable slot, applying carry-forward when the slot is underpaid.
func RecordInstallmentPayment(c *fiber.Ctx) error {
	ledgerID, err := uuid.Parse(c.Params("ledgerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ledger ID format"})
	}
	emiNumber, err := c.ParamsInt("emiNumber")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid EMI number"})
	}
	staffID := c.Locals("staffID").(uuid.UUID)

	var req InstallmentPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	paidDate, err := time.Parse(dateLayout, req.PaidDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("paid_date must be formatted as %s", dateLayout),
		})
	}

	var ledger models.PaymentLedger
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Student").First(&ledger, "id = ?", ledgerID).Error; err != nil {
			return err
		}

		if err := services.ApplyInstallmentPayment(&ledger, emiNumber, req.PaidAmount, paidDate, req.ProofURL, time.Now(), staffID); err != nil {
			return err
		}

		if err := tx.Save(&ledger).Error; err != nil {
			return err
		}

		if err := services.ResyncPendingProjection(tx, ledger.ID); err != nil {
			log.Printf("🔥 Pending projection resync failed for ledger %s: %v", ledger.ID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ledger not found"})
		}
		return ledgerErrorResponse(c, err)
	}

	go notifications.SendEmail(
		ledger.Student.FullName,
		ledger.Student.Email,
		fmt.Sprintf("Payment received for EMI %d", emiNumber),
		fmt.Sprintf("<h1>Payment Received</h1><p>We have recorded your payment of %s towards installment %d. Your pending balance is now %s.</p>",
			req.PaidAmount, emiNumber, ledger.TotalPending),
	)

	return c.JSON(ledger)
}

// GetLedger returns the ledger together with its derived per-slot state.
func GetLedger(c *fiber.Ctx) error {
	ledgerID := c.Params("ledgerId")

	var ledger models.PaymentLedger
	if err := database.DB.Preload("Student").First(&ledger, "id = ?", ledgerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ledger not found"})
	}

	installments := make([]fiber.Map, 0, models.MaxInstallments)
	for i := 1; i <= models.MaxInstallments; i++ {
		installments = append(installments, fiber.Map{
			"number":     i,
			"fully_paid": services.IsInstallmentFullyPaid(&ledger, i),
			"can_edit":   services.CanEditInstallment(&ledger, i),
		})
	}

	return c.JSON(fiber.Map{
		"ledger":             ledger,
		"next_payable":       services.NextPayableInstallment(&ledger),
		"next_unpaid":        services.FirstUnpaidInstallment(&ledger),
		"installment_states": installments,
	})
}

// GetLedgerReceipt renders the ledger's payment receipt as a PDF. With
// ?archive=true the receipt is also uploaded and its URL returned instead.
func GetLedgerReceipt(c *fiber.Ctx) error {
	ledgerID := c.Params("ledgerId")

	var ledger models.PaymentLedger
	if err := database.DB.Preload("Student").Preload("Student.Course").First(&ledger, "id = ?", ledgerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ledger not found"})
	}

	pdfBytes, err := services.GenerateReceiptPDF(&ledger)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt for ledger %s: %v", ledger.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate receipt"})
	}

	if c.Query("archive") == "true" {
		url, err := services.ArchiveReceipt(pdfBytes, ledger.Code)
		if err != nil {
			log.Printf("🔥 Failed to archive receipt for ledger %s: %v", ledger.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to archive receipt"})
		}
		return c.JSON(fiber.Map{"receipt_url": url})
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-receipt.pdf", ledger.Code))
	return c.Send(pdfBytes)
}

func ledgerErrorResponse(c *fiber.Ctx, err error) error {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Message, "field": vErr.Field})
	}
	if errors.Is(err, services.ErrInvariantViolation) {
		log.Printf("🔥 CRITICAL: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ledger state is inconsistent; the save was aborted"})
	}
	log.Printf("🔥 Payment operation failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save payment"})
}
