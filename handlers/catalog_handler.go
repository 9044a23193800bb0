package handlers

import (
	"log"
	"time"

	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/brightsteps/institute_backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CourseRequest struct {
	Name          string          `json:"name" validate:"required"`
	DurationWeeks int             `json:"duration_weeks" validate:"required,gt=0"`
	TotalFee      decimal.Decimal `json:"total_fee"`
}

type TrainerRequest struct {
	FullName    string  `json:"full_name" validate:"required,min=3"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone"`
	TrainerType string  `json:"trainer_type" validate:"required,oneof=onboard freelance"`
}

type ConsultantRequest struct {
	FullName string  `json:"full_name" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
}

type BatchRequest struct {
	Name      string `json:"name" validate:"required"`
	CourseID  string `json:"course_id" validate:"required,uuid"`
	TrainerID string `json:"trainer_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"required"`
	Timing    string `json:"timing"`
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.TotalFee.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "total_fee must be greater than 0"})
	}

	course := models.Course{
		Name:          req.Name,
		DurationWeeks: req.DurationWeeks,
		TotalFee:      req.TotalFee,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		code, err := utils.NextSequentialCode(tx, &models.Course{}, "CRS")
		if err != nil {
			return err
		}
		course.Code = code
		return tx.Create(&course).Error
	})
	if err != nil {
		log.Printf("🔥 Failed to create course: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	database.DB.Order("code asc").Find(&courses)
	return c.JSON(courses)
}

func CreateTrainer(c *fiber.Ctx) error {
	var req TrainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trainer := models.Trainer{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		TrainerType: req.TrainerType,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		code, err := utils.NextSequentialCode(tx, &models.Trainer{}, "TRN")
		if err != nil {
			return err
		}
		trainer.Code = code
		return tx.Create(&trainer).Error
	})
	if err != nil {
		log.Printf("🔥 Failed to create trainer: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create trainer"})
	}
	return c.Status(fiber.StatusCreated).JSON(trainer)
}

func ListTrainers(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Trainer{})
	if trainerType := c.Query("trainer_type"); trainerType != "" {
		query = query.Where("trainer_type = ?", trainerType)
	}
	var trainers []models.Trainer
	query.Order("code asc").Find(&trainers)
	return c.JSON(trainers)
}

func CreateConsultant(c *fiber.Ctx) error {
	var req ConsultantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	consultant := models.Consultant{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		code, err := utils.NextSequentialCode(tx, &models.Consultant{}, "CON")
		if err != nil {
			return err
		}
		consultant.Code = code
		return tx.Create(&consultant).Error
	})
	if err != nil {
		log.Printf("🔥 Failed to create consultant: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create consultant"})
	}
	return c.Status(fiber.StatusCreated).JSON(consultant)
}

func ListConsultants(c *fiber.Ctx) error {
	var consultants []models.Consultant
	database.DB.Order("code asc").Find(&consultants)
	return c.JSON(consultants)
}

func CreateBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be formatted as " + dateLayout})
	}

	var trainer models.Trainer
	if err := database.DB.First(&trainer, "id = ?", req.TrainerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
	}

	batch := models.Batch{
		Name:      req.Name,
		CourseID:  uuid.MustParse(req.CourseID),
		TrainerID: trainer.ID,
		StartDate: startDate,
		Timing:    req.Timing,
	}
	if err := database.DB.Create(&batch).Error; err != nil {
		log.Printf("🔥 Failed to create batch: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create batch"})
	}
	return c.Status(fiber.StatusCreated).JSON(batch)
}

func ListBatches(c *fiber.Ctx) error {
	var batches []models.Batch
	database.DB.Preload("Course").Preload("Trainer").Order("start_date desc").Find(&batches)
	return c.JSON(batches)
}
