package middleware

import (
	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ActingStaff resolves the back-office user a mutating request acts as, from
// the X-User-ID header. Every payment mutation is attributed to an explicit
// user; there is no ambient request-user state.
func ActingStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "X-User-ID header is required",
			})
		}

		staffID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "X-User-ID must be a valid UUID",
			})
		}

		var user models.User
		if err := database.DB.First(&user, "id = ? AND is_active = ?", staffID, true).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unknown or inactive staff user",
			})
		}

		c.Locals("staffID", staffID)
		return c.Next()
	}
}
