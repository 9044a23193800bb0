package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PendingStatusPending = "Pending"
	PendingStatusPaid    = "Paid"
)

// PendingPaymentRecord is a denormalized snapshot of a ledger's outstanding
// balance, kept for list and dashboard queries. It is created the first time
// a ledger shows a positive pending amount and is never deleted: once the
// balance reaches zero the row flips to Paid and stays for audit history.
type PendingPaymentRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LedgerID uuid.UUID `gorm:"not null;unique" json:"ledger_id"`

	StudentID    uuid.UUID `gorm:"not null" json:"student_id"`
	StudentCode  string    `gorm:"size:10" json:"student_code"`
	StudentName  string    `gorm:"size:255" json:"student_name"`
	StudentPhone string    `gorm:"size:20" json:"student_phone"`

	CourseName     string  `gorm:"size:255" json:"course_name"`
	CourseStatus   string  `gorm:"size:20" json:"course_status"`
	BatchName      *string `gorm:"size:100" json:"batch_name"`
	TrainerName    *string `gorm:"size:255" json:"trainer_name"`
	TrainerType    *string `gorm:"size:20" json:"trainer_type"`
	ConsultantName *string `gorm:"size:255" json:"consultant_name"`

	PendingAmount decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"pending_amount"`
	NextEMINumber *int             `json:"next_emi_number"`
	NextEMIAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"next_emi_amount"`
	NextDueDate   *time.Time       `gorm:"type:date" json:"next_due_date"`

	Status      string     `gorm:"size:10;not null;default:'Pending'" json:"status"`
	CreatedByID *uuid.UUID `json:"created_by_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
