package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxInstallments is the hard limit on scheduled installments per ledger.
const MaxInstallments = 4

// InstallmentSlot is one scheduled installment. A slot with a nil DueAmount
// is inactive; a slot with a non-nil PaidAmount has been collected.
type InstallmentSlot struct {
	DueAmount   *decimal.Decimal `gorm:"type:numeric(12,2)" json:"due_amount"`
	DueDate     *time.Time       `gorm:"type:date" json:"due_date"`
	PaidAmount  *decimal.Decimal `gorm:"type:numeric(12,2)" json:"paid_amount"`
	PaidDate    *time.Time       `gorm:"type:date" json:"paid_date"`
	ProofURL    *string          `gorm:"size:255" json:"proof_url"`
	UpdatedByID *uuid.UUID       `json:"updated_by_id"`
}

// PaymentLedger is the authoritative payment record for one student: the fee
// baseline fixed at enrollment, the up-front payment, and up to four
// sequential installments covering the balance.
type PaymentLedger struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code      string    `gorm:"size:10;unique" json:"code"`
	StudentID uuid.UUID `gorm:"not null;unique" json:"student_id"`

	TotalFee        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_fee"`
	UpfrontPaid     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"upfront_paid"`
	UpfrontProofURL string          `gorm:"size:255" json:"upfront_proof_url"`

	// InstallmentPlan is the selected number of installments, 0 when the
	// up-front payment cleared the whole fee.
	InstallmentPlan int `gorm:"not null;default:0" json:"installment_plan"`

	EMI1 InstallmentSlot `gorm:"embedded;embeddedPrefix:emi1_" json:"emi_1"`
	EMI2 InstallmentSlot `gorm:"embedded;embeddedPrefix:emi2_" json:"emi_2"`
	EMI3 InstallmentSlot `gorm:"embedded;embeddedPrefix:emi3_" json:"emi_3"`
	EMI4 InstallmentSlot `gorm:"embedded;embeddedPrefix:emi4_" json:"emi_4"`

	TotalPending decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_pending"`

	Student Student `gorm:"foreignkey:StudentID" json:"student"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slots returns the four installment slots in payment order, so callers can
// index them numerically instead of touching EMI1..EMI4 by name.
func (l *PaymentLedger) Slots() [MaxInstallments]*InstallmentSlot {
	return [MaxInstallments]*InstallmentSlot{&l.EMI1, &l.EMI2, &l.EMI3, &l.EMI4}
}

// Slot returns the slot for a 1-based installment number, or nil when the
// number is out of range.
func (l *PaymentLedger) Slot(number int) *InstallmentSlot {
	if number < 1 || number > MaxInstallments {
		return nil
	}
	return l.Slots()[number-1]
}

// Active reports whether the slot has a scheduled due amount.
func (s *InstallmentSlot) Active() bool {
	return s.DueAmount != nil && s.DueAmount.IsPositive()
}

// Paid returns the collected amount, zero when nothing was recorded.
func (s *InstallmentSlot) Paid() decimal.Decimal {
	if s.PaidAmount == nil {
		return decimal.Zero
	}
	return *s.PaidAmount
}

// Remaining returns due minus paid for an active slot, zero otherwise.
func (s *InstallmentSlot) Remaining() decimal.Decimal {
	if !s.Active() {
		return decimal.Zero
	}
	return s.DueAmount.Sub(s.Paid())
}

// Clear resets the slot to the inactive state.
func (s *InstallmentSlot) Clear() {
	s.DueAmount = nil
	s.DueDate = nil
	s.PaidAmount = nil
	s.PaidDate = nil
	s.ProofURL = nil
	s.UpdatedByID = nil
}
