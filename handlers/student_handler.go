package handlers

import (
	"errors"
	"log"
	"math"
	"strconv"

	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/brightsteps/institute_backend/services"
	"github.com/brightsteps/institute_backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentRequest struct {
	FullName     string  `json:"full_name" validate:"required,min=3"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"required"`
	CourseID     string  `json:"course_id" validate:"required,uuid"`
	ConsultantID *string `json:"consultant_id" validate:"omitempty,uuid"`
	CourseStatus string  `json:"course_status" validate:"omitempty,oneof=ongoing completed dropped"`
}

type AssignBatchRequest struct {
	BatchID string `json:"batch_id" validate:"required,uuid"`
}

func CreateStudent(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", req.CourseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	student := models.Student{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		CourseID: course.ID,
	}
	if req.CourseStatus != "" {
		student.CourseStatus = req.CourseStatus
	}
	if req.ConsultantID != nil {
		consultantID := uuid.MustParse(*req.ConsultantID)
		student.ConsultantID = &consultantID
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		code, err := utils.NextSequentialCode(tx, &models.Student{}, "STU")
		if err != nil {
			return err
		}
		student.Code = code
		return tx.Create(&student).Error
	})
	if err != nil {
		log.Printf("🔥 Failed to create student: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}

	return c.Status(fiber.StatusCreated).JSON(student)
}

func ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Student{})
	if status := c.Query("course_status"); status != "" {
		query = query.Where("course_status = ?", status)
	}

	var total int64
	query.Count(&total)

	var students []models.Student
	query.Order("code asc").Offset(offset).Limit(limit).
		Preload("Course").Preload("Batch").Preload("Consultant").
		Find(&students)

	return c.JSON(fiber.Map{
		"data": students,
		"meta": fiber.Map{
			"total":     total,
			"page":      page,
			"last_page": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func GetStudent(c *fiber.Ctx) error {
	studentID := c.Params("studentId")

	var student models.Student
	err := database.DB.
		Preload("Course").
		Preload("Batch").
		Preload("Batch.Trainer").
		Preload("Consultant").
		First(&student, "id = ?", studentID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	return c.JSON(student)
}

// UpdateStudent edits the student record and refreshes the pending-payment
// projection, which denormalizes the student's display fields.
func UpdateStudent(c *fiber.Ctx) error {
	studentID := c.Params("studentId")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	student.FullName = req.FullName
	student.Email = req.Email
	student.Phone = req.Phone
	student.CourseID = uuid.MustParse(req.CourseID)
	if req.CourseStatus != "" {
		student.CourseStatus = req.CourseStatus
	}
	if req.ConsultantID != nil {
		consultantID := uuid.MustParse(*req.ConsultantID)
		student.ConsultantID = &consultantID
	} else {
		student.ConsultantID = nil
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&student).Error; err != nil {
			return err
		}
		return resyncStudentLedger(tx, student.ID)
	})
	if err != nil {
		log.Printf("🔥 Failed to update student %s: %v", student.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
	}

	return c.JSON(student)
}

// AssignBatch moves the student into a batch and refreshes the pending
// projection, which carries the batch and trainer display names.
func AssignBatch(c *fiber.Ctx) error {
	studentID := c.Params("studentId")

	var req AssignBatchRequest
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

	var batch models.Batch
	if err := database.DB.First(&batch, "id = ?", req.BatchID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch not found"})
	}

	if batch.CourseID != student.CourseID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Batch belongs to a different course"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		student.BatchID = &batch.ID
		if err := tx.Save(&student).Error; err != nil {
			return err
		}
		return resyncStudentLedger(tx, student.ID)
	})
	if err != nil {
		log.Printf("🔥 Failed to assign batch for student %s: %v", student.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign batch"})
	}

	return c.JSON(student)
}

func resyncStudentLedger(tx *gorm.DB, studentID uuid.UUID) error {
	var ledger models.PaymentLedger
	err := tx.Select("id").Where("student_id = ?", studentID).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return services.ResyncPendingProjection(tx, ledger.ID)
}
