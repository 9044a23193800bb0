package services

import (
	"errors"
	"fmt"

	"github.com/brightsteps/institute_backend/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BuildPendingProjection derives the full pending-record snapshot from the
// ledger and its student graph. It is a pure refresh: calling it twice with
// the same inputs yields identical fields.
func BuildPendingProjection(ledger *models.PaymentLedger, student *models.Student) models.PendingPaymentRecord {
	record := models.PendingPaymentRecord{
		LedgerID:     ledger.ID,
		StudentID:    student.ID,
		StudentCode:  student.Code,
		StudentName:  student.FullName,
		StudentPhone: student.Phone,
		CourseName:   student.Course.Name,
		CourseStatus: student.CourseStatus,
	}

	if student.Batch != nil {
		record.BatchName = &student.Batch.Name
		record.TrainerName = &student.Batch.Trainer.FullName
		record.TrainerType = &student.Batch.Trainer.TrainerType
	}
	if student.Consultant != nil {
		record.ConsultantName = &student.Consultant.FullName
	}

	if ledger.TotalPending.IsPositive() {
		record.Status = models.PendingStatusPending
		record.PendingAmount = ledger.TotalPending
		if next := FirstUnpaidInstallment(ledger); next != 0 {
			slot := ledger.Slot(next)
			amount := *slot.DueAmount
			record.NextEMINumber = &next
			record.NextEMIAmount = &amount
			record.NextDueDate = slot.DueDate
		}
	} else {
		record.Status = models.PendingStatusPaid
		record.PendingAmount = decimal.Zero
	}

	return record
}

// ResyncPendingProjection re-derives the pending record for a ledger and
// upserts it. Callers invoke it after any change that can affect the
// projection: a ledger save, a student update, or a batch reassignment. The
// record is created lazily on the first positive pending balance and kept
// (flipped to Paid) once the balance clears.
func ResyncPendingProjection(tx *gorm.DB, ledgerID uuid.UUID) error {
	var ledger models.PaymentLedger
	err := tx.
		Preload("Student").
		Preload("Student.Course").
		Preload("Student.Batch").
		Preload("Student.Batch.Trainer").
		Preload("Student.Consultant").
		First(&ledger, "id = ?", ledgerID).Error
	if err != nil {
		return fmt.Errorf("load ledger %s: %w", ledgerID, err)
	}

	projection := BuildPendingProjection(&ledger, &ledger.Student)

	var existing models.PendingPaymentRecord
	err = tx.Where("ledger_id = ?", ledgerID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !ledger.TotalPending.IsPositive() {
			return nil
		}
		projection.CreatedByID = latestUpdater(&ledger)
		return tx.Create(&projection).Error
	case err != nil:
		return err
	}

	existing.StudentID = projection.StudentID
	existing.StudentCode = projection.StudentCode
	existing.StudentName = projection.StudentName
	existing.StudentPhone = projection.StudentPhone
	existing.CourseName = projection.CourseName
	existing.CourseStatus = projection.CourseStatus
	existing.BatchName = projection.BatchName
	existing.TrainerName = projection.TrainerName
	existing.TrainerType = projection.TrainerType
	existing.ConsultantName = projection.ConsultantName
	existing.PendingAmount = projection.PendingAmount
	existing.NextEMINumber = projection.NextEMINumber
	existing.NextEMIAmount = projection.NextEMIAmount
	existing.NextDueDate = projection.NextDueDate
	existing.Status = projection.Status

	return tx.Save(&existing).Error
}

// latestUpdater attributes a freshly created record to the most recent
// installment updater on file, nil when no installment has one.
func latestUpdater(ledger *models.PaymentLedger) *uuid.UUID {
	slots := ledger.Slots()
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i].UpdatedByID != nil {
			return slots[i].UpdatedByID
		}
	}
	return nil
}
