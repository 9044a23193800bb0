package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/brightsteps/institute_backend/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvariantViolation marks a ledger state that should never be reachable
// through validated input, such as a paid amount above the due amount found
// at save time. Saves hitting it must abort.
var ErrInvariantViolation = errors.New("ledger invariant violation")

// ValidationError is a user-correctable input error. Validation runs fully
// before anything is persisted, so a returned ValidationError means no
// partial save happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InstallmentTerm is one scheduled installment in an initial payment entry.
type InstallmentTerm struct {
	Amount  decimal.Decimal
	DueDate time.Time
}

// InitialPaymentInput carries everything record-initial-payment validates.
type InitialPaymentInput struct {
	TotalFee    decimal.Decimal
	UpfrontPaid decimal.Decimal
	ProofURL    string
	Plan        int
	Schedule    []InstallmentTerm
}

// ApplyInitialPayment validates and writes the fee baseline and installment
// schedule onto the ledger. The ledger is only mutated after every check has
// passed. Slots past the selected plan are cleared.
func ApplyInitialPayment(ledger *models.PaymentLedger, in InitialPaymentInput, now time.Time) error {
	if !in.TotalFee.IsPositive() {
		return invalid("total_fee", "total fees must be greater than 0")
	}
	if !in.UpfrontPaid.IsPositive() {
		return invalid("upfront_paid", "upfront payment must be greater than 0")
	}
	if in.UpfrontPaid.GreaterThan(in.TotalFee) {
		return invalid("upfront_paid", "upfront payment cannot exceed the total fee")
	}
	if in.ProofURL == "" && ledger.UpfrontProofURL == "" {
		return invalid("proof_url", "payment proof is required")
	}

	pending := in.TotalFee.Sub(in.UpfrontPaid)

	if pending.IsPositive() {
		if in.Plan < 1 || in.Plan > models.MaxInstallments {
			return invalid("installment_plan", "select an EMI option for the pending amount")
		}
		if len(in.Schedule) != in.Plan {
			return invalid("installments", "expected %d installments, got %d", in.Plan, len(in.Schedule))
		}

		sum := decimal.Zero
		for i, term := range in.Schedule {
			field := fmt.Sprintf("installments[%d]", i)
			if !term.Amount.IsPositive() {
				return invalid(field, "EMI %d amount must be greater than 0", i+1)
			}
			if term.DueDate.IsZero() {
				return invalid(field, "EMI %d due date is required", i+1)
			}
			if i == 0 {
				if !term.DueDate.After(now) {
					return invalid(field, "EMI 1 due date must be in the future")
				}
			} else if !term.DueDate.After(in.Schedule[i-1].DueDate) {
				return invalid(field, "EMI %d due date must be after EMI %d", i+1, i)
			}
			sum = sum.Add(term.Amount)
		}
		if !sum.Equal(pending) {
			return invalid("installments", "installment amounts must sum to the pending %s, got %s", pending, sum)
		}
	} else if in.Plan != 0 && len(in.Schedule) > 0 {
		return invalid("installment_plan", "no installments allowed when nothing is pending")
	}

	ledger.TotalFee = in.TotalFee
	ledger.UpfrontPaid = in.UpfrontPaid
	if in.ProofURL != "" {
		ledger.UpfrontProofURL = in.ProofURL
	}

	if pending.IsPositive() {
		ledger.InstallmentPlan = in.Plan
	} else {
		ledger.InstallmentPlan = 0
	}

	slots := ledger.Slots()
	for i, slot := range slots {
		if i < ledger.InstallmentPlan {
			amount := in.Schedule[i].Amount
			due := in.Schedule[i].DueDate
			slot.DueAmount = &amount
			slot.DueDate = &due
			slot.PaidAmount = nil
			slot.PaidDate = nil
		} else {
			slot.Clear()
		}
	}

	RecomputeTotalPending(ledger)
	return nil
}

// ApplyInstallmentPayment records one installment payment. Only the next
// payable slot (the first active slot without a recorded payment) may be
// targeted; underpaying a non-final slot carries the deficit onto the next
// slot, creating it when needed.
func ApplyInstallmentPayment(ledger *models.PaymentLedger, emiNumber int, amount decimal.Decimal, paidDate time.Time, proofURL string, now time.Time, userID uuid.UUID) error {
	slot := ledger.Slot(emiNumber)
	if slot == nil {
		return invalid("emi_number", "EMI number must be between 1 and %d", models.MaxInstallments)
	}
	next := FirstUnpaidInstallment(ledger)
	if next == 0 {
		return invalid("emi_number", "no installment is awaiting payment")
	}
	if emiNumber != next {
		return invalid("emi_number", "EMI %d is not payable yet; EMI %d is next", emiNumber, next)
	}

	if !amount.IsPositive() {
		return invalid("paid_amount", "paid amount must be greater than 0")
	}
	due := *slot.DueAmount
	if amount.GreaterThan(due) {
		return invalid("paid_amount", "paid amount %s exceeds the due amount %s", amount, due)
	}
	if emiNumber == models.MaxInstallments && !amount.Equal(due) {
		return invalid("paid_amount", "the final installment must be paid in full: %s", due)
	}
	if paidDate.After(now) {
		return invalid("paid_date", "paid date cannot be in the future")
	}
	if proofURL == "" && slot.ProofURL == nil {
		return invalid("proof_url", "payment proof is required")
	}

	slot.PaidAmount = &amount
	slot.PaidDate = &paidDate
	if proofURL != "" {
		slot.ProofURL = &proofURL
	}
	slot.UpdatedByID = &userID

	// One carry-forward per save: the deficit moves onto the following
	// slot's pre-update due amount, so repeated saves cannot double count.
	if amount.LessThan(due) && emiNumber < models.MaxInstallments {
		carryForward(ledger, emiNumber, due.Sub(amount), paidDate)
	}

	RecomputeTotalPending(ledger)

	for _, s := range ledger.Slots() {
		if s.PaidAmount != nil && s.DueAmount != nil && s.PaidAmount.GreaterThan(*s.DueAmount) {
			return fmt.Errorf("%w: paid amount %s above due %s", ErrInvariantViolation, s.PaidAmount, s.DueAmount)
		}
	}
	return nil
}

func carryForward(ledger *models.PaymentLedger, fromEMI int, deficit decimal.Decimal, paidDate time.Time) {
	target := ledger.Slot(fromEMI + 1)
	if target.Active() {
		bumped := target.DueAmount.Add(deficit)
		target.DueAmount = &bumped
		return
	}

	base := paidDate
	if base.IsZero() {
		base = time.Now()
	}
	due := base.AddDate(0, 1, 0)
	target.DueAmount = &deficit
	target.DueDate = &due
	if ledger.InstallmentPlan < fromEMI+1 {
		ledger.InstallmentPlan = fromEMI + 1
	}
}

// RecomputeTotalPending re-derives the pending balance from the fee baseline
// and the recorded payments. It runs unconditionally on every save.
func RecomputeTotalPending(ledger *models.PaymentLedger) {
	pending := ledger.TotalFee.Sub(ledger.UpfrontPaid)
	for _, slot := range ledger.Slots() {
		pending = pending.Sub(slot.Paid())
	}
	ledger.TotalPending = pending
}

// FirstUnpaidInstallment returns the 1-based number of the first active slot
// with no recorded payment, or 0 when every active slot has one. This is the
// slot the save path accepts a payment against.
func FirstUnpaidInstallment(ledger *models.PaymentLedger) int {
	for i, slot := range ledger.Slots() {
		if slot.Active() && slot.PaidAmount == nil {
			return i + 1
		}
	}
	return 0
}

// NextPayableInstallment walks the slots with a running credit seeded from
// the up-front payment, skipping slots the credit already covers. It returns
// 0 when every active slot is settled, which models an overpayment elsewhere
// having covered a later installment.
func NextPayableInstallment(ledger *models.PaymentLedger) int {
	credit := ledger.UpfrontPaid
	for i, slot := range ledger.Slots() {
		if !slot.Active() {
			continue
		}
		remaining := slot.Remaining()
		if remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if credit.GreaterThanOrEqual(remaining) {
			credit = credit.Sub(remaining)
			continue
		}
		return i + 1
	}
	return 0
}

// IsInstallmentFullyPaid reports whether the slot is settled. Inactive slots
// count as settled.
func IsInstallmentFullyPaid(ledger *models.PaymentLedger, number int) bool {
	slot := ledger.Slot(number)
	if slot == nil || !slot.Active() {
		return true
	}
	return slot.Paid().GreaterThanOrEqual(*slot.DueAmount)
}

// CanEditInstallment encodes strict sequential payment order: a slot is
// editable only when it is active, not yet fully paid, and every earlier
// slot has been fully paid.
func CanEditInstallment(ledger *models.PaymentLedger, number int) bool {
	slot := ledger.Slot(number)
	if slot == nil || !slot.Active() || IsInstallmentFullyPaid(ledger, number) {
		return false
	}
	if number == 1 {
		return true
	}
	prev := ledger.Slot(number - 1)
	return prev.Active() && IsInstallmentFullyPaid(ledger, number-1)
}
