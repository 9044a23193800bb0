package handlers

import (
	"math"
	"strconv"

	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/gofiber/fiber/v2"
)

// ListPendingPayments serves the read-optimized pending-payment snapshots
// that dashboards and follow-up lists are built on.
func ListPendingPayments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.PendingPaymentRecord{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if courseStatus := c.Query("course_status"); courseStatus != "" {
		query = query.Where("course_status = ?", courseStatus)
	}
	if trainerType := c.Query("trainer_type"); trainerType != "" {
		query = query.Where("trainer_type = ?", trainerType)
	}

	var total int64
	query.Count(&total)

	var records []models.PendingPaymentRecord
	query.Order("next_due_date asc NULLS LAST").Offset(offset).Limit(limit).Find(&records)

	return c.JSON(fiber.Map{
		"data": records,
		"meta": fiber.Map{
			"total":     total,
			"page":      page,
			"last_page": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}
