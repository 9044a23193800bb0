package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/brightsteps/institute_backend/notifications"
)

const reminderWindowDays = 3

// SendDueReminders emails every student whose next installment falls due
// within the reminder window. It reads the pending projection, so it costs
// one indexed query per run.
func SendDueReminders() {
	log.Println("Running job: SendDueReminders...")

	cutoff := time.Now().AddDate(0, 0, reminderWindowDays)

	var records []models.PendingPaymentRecord
	err := database.DB.
		Where("status = ? AND next_due_date IS NOT NULL AND next_due_date <= ?", models.PendingStatusPending, cutoff).
		Find(&records).Error
	if err != nil {
		log.Printf("Error loading due pending records: %v", err)
		return
	}

	if len(records) == 0 {
		return
	}

	for _, record := range records {
		var student models.Student
		if err := database.DB.First(&student, "id = ?", record.StudentID).Error; err != nil {
			log.Printf("Skipping reminder, student %s not found: %v", record.StudentID, err)
			continue
		}

		emiNumber := 0
		if record.NextEMINumber != nil {
			emiNumber = *record.NextEMINumber
		}
		dueDate := ""
		if record.NextDueDate != nil {
			dueDate = record.NextDueDate.Format("January 2, 2006")
		}

		emailSubject := fmt.Sprintf("Reminder: EMI %d is due on %s", emiNumber, dueDate)
		emailBody := fmt.Sprintf(
			"<h1>Installment Due</h1><p>Hi %s,</p><p>Your installment %d of %s for %s is due on %s. Your pending balance is %s.</p>",
			student.FullName, emiNumber, record.NextEMIAmount, record.CourseName, dueDate, record.PendingAmount,
		)

		go notifications.SendEmail(student.FullName, student.Email, emailSubject, emailBody)
	}
}
