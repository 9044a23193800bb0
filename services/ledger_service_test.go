package services

import (
	"testing"
	"time"

	"github.com/brightsteps/institute_backend/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func dp(v int64) *decimal.Decimal {
	amount := decimal.NewFromInt(v)
	return &amount
}

func tp(t time.Time) *time.Time { return &t }

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// scheduledLedger builds a ledger with a fee baseline and active slots.
func scheduledLedger(totalFee, upfront int64, dues ...int64) *models.PaymentLedger {
	ledger := &models.PaymentLedger{
		ID:              uuid.New(),
		TotalFee:        d(totalFee),
		UpfrontPaid:     d(upfront),
		UpfrontProofURL: "https://proofs.test/upfront.png",
		InstallmentPlan: len(dues),
	}
	for i, due := range dues {
		slot := ledger.Slot(i + 1)
		slot.DueAmount = dp(due)
		slot.DueDate = tp(date(2026, time.April+time.Month(i), 10))
	}
	RecomputeTotalPending(ledger)
	return ledger
}

func validInitialInput(plan int, amounts ...int64) InitialPaymentInput {
	in := InitialPaymentInput{
		TotalFee:    d(10000),
		UpfrontPaid: d(4000),
		ProofURL:    "https://proofs.test/upfront.png",
		Plan:        plan,
	}
	for i, amount := range amounts {
		in.Schedule = append(in.Schedule, InstallmentTerm{
			Amount:  d(amount),
			DueDate: date(2026, time.April+time.Month(i), 10),
		})
	}
	return in
}

func TestApplyInitialPayment(t *testing.T) {
	t.Run("schedule summing to the pending amount is accepted", func(t *testing.T) {
		ledger := &models.PaymentLedger{}
		err := ApplyInitialPayment(ledger, validInitialInput(3, 2000, 2000, 2000), testNow)

		require.NoError(t, err)
		assert.Equal(t, 3, ledger.InstallmentPlan)
		assert.True(t, ledger.TotalPending.Equal(d(6000)))
		assert.True(t, ledger.EMI1.DueAmount.Equal(d(2000)))
		assert.True(t, ledger.EMI3.DueAmount.Equal(d(2000)))
		assert.Nil(t, ledger.EMI4.DueAmount)
	})

	t.Run("schedule with a sum mismatch is rejected", func(t *testing.T) {
		ledger := &models.PaymentLedger{}
		err := ApplyInitialPayment(ledger, validInitialInput(3, 2000, 2000, 1999), testNow)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Message, "6000")
		assert.Contains(t, vErr.Message, "5999")
	})

	t.Run("validation happens before any mutation", func(t *testing.T) {
		ledger := &models.PaymentLedger{}
		err := ApplyInitialPayment(ledger, validInitialInput(3, 2000, 2000, 1999), testNow)

		require.Error(t, err)
		assert.True(t, ledger.TotalFee.IsZero())
		assert.Nil(t, ledger.EMI1.DueAmount)
	})

	t.Run("upfront covering the whole fee clears the plan", func(t *testing.T) {
		ledger := &models.PaymentLedger{}
		in := InitialPaymentInput{
			TotalFee:    d(5000),
			UpfrontPaid: d(5000),
			ProofURL:    "https://proofs.test/upfront.png",
		}
		require.NoError(t, ApplyInitialPayment(ledger, in, testNow))
		assert.Equal(t, 0, ledger.InstallmentPlan)
		assert.True(t, ledger.TotalPending.IsZero())
		for _, slot := range ledger.Slots() {
			assert.Nil(t, slot.DueAmount)
		}
	})

	t.Run("existing proof satisfies the proof requirement", func(t *testing.T) {
		ledger := &models.PaymentLedger{UpfrontProofURL: "https://proofs.test/old.png"}
		in := validInitialInput(3, 2000, 2000, 2000)
		in.ProofURL = ""
		require.NoError(t, ApplyInitialPayment(ledger, in, testNow))
		assert.Equal(t, "https://proofs.test/old.png", ledger.UpfrontProofURL)
	})

	rejections := []struct {
		name   string
		mutate func(*InitialPaymentInput)
		field  string
	}{
		{
			name:   "zero total fee",
			mutate: func(in *InitialPaymentInput) { in.TotalFee = decimal.Zero },
			field:  "total_fee",
		},
		{
			name:   "zero upfront payment",
			mutate: func(in *InitialPaymentInput) { in.UpfrontPaid = decimal.Zero },
			field:  "upfront_paid",
		},
		{
			name:   "upfront above the total fee",
			mutate: func(in *InitialPaymentInput) { in.UpfrontPaid = d(10001) },
			field:  "upfront_paid",
		},
		{
			name:   "missing proof on a fresh ledger",
			mutate: func(in *InitialPaymentInput) { in.ProofURL = "" },
			field:  "proof_url",
		},
		{
			name:   "no plan selected while an amount is pending",
			mutate: func(in *InitialPaymentInput) { in.Plan = 0; in.Schedule = nil },
			field:  "installment_plan",
		},
		{
			name:   "plan above the slot limit",
			mutate: func(in *InitialPaymentInput) { in.Plan = 5 },
			field:  "installment_plan",
		},
		{
			name:   "first due date not in the future",
			mutate: func(in *InitialPaymentInput) { in.Schedule[0].DueDate = testNow.AddDate(0, 0, -1) },
			field:  "installments[0]",
		},
		{
			name:   "due dates out of order",
			mutate: func(in *InitialPaymentInput) { in.Schedule[1].DueDate = in.Schedule[0].DueDate },
			field:  "installments[1]",
		},
		{
			name:   "non-positive installment amount",
			mutate: func(in *InitialPaymentInput) { in.Schedule[2].Amount = decimal.Zero },
			field:  "installments[2]",
		},
	}
	for _, tc := range rejections {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			in := validInitialInput(3, 2000, 2000, 2000)
			tc.mutate(&in)

			var vErr *ValidationError
			err := ApplyInitialPayment(&models.PaymentLedger{}, in, testNow)
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestApplyInstallmentPayment(t *testing.T) {
	staffID := uuid.New()
	paidDate := date(2026, 3, 9)
	proof := "https://proofs.test/emi.png"

	t.Run("full payment settles the slot", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 3000, 3000)
		err := ApplyInstallmentPayment(ledger, 1, d(3000), paidDate, proof, testNow, staffID)

		require.NoError(t, err)
		assert.True(t, ledger.EMI1.PaidAmount.Equal(d(3000)))
		assert.Equal(t, paidDate, *ledger.EMI1.PaidDate)
		assert.Equal(t, staffID, *ledger.EMI1.UpdatedByID)
		assert.True(t, ledger.EMI2.DueAmount.Equal(d(3000)))
		assert.True(t, ledger.TotalPending.Equal(d(3000)))
	})

	t.Run("underpayment carries the deficit onto the existing next slot", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 3000, 3000)
		err := ApplyInstallmentPayment(ledger, 1, d(2000), paidDate, proof, testNow, staffID)

		require.NoError(t, err)
		assert.True(t, ledger.EMI1.PaidAmount.Equal(d(2000)))
		assert.True(t, ledger.EMI2.DueAmount.Equal(d(4000)))
		assert.Equal(t, 2, ledger.InstallmentPlan)
		assert.True(t, ledger.TotalPending.Equal(d(4000)))
	})

	t.Run("underpaying the last planned slot opens a new one", func(t *testing.T) {
		ledger := scheduledLedger(5000, 2000, 3000)
		err := ApplyInstallmentPayment(ledger, 1, d(2000), paidDate, proof, testNow, staffID)

		require.NoError(t, err)
		assert.Equal(t, 2, ledger.InstallmentPlan)
		require.NotNil(t, ledger.EMI2.DueAmount)
		assert.True(t, ledger.EMI2.DueAmount.Equal(d(1000)))
		require.NotNil(t, ledger.EMI2.DueDate)
		assert.Equal(t, paidDate.AddDate(0, 1, 0), *ledger.EMI2.DueDate)
		assert.True(t, ledger.TotalPending.Equal(d(1000)))
	})

	t.Run("the final installment must be paid exactly", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 1500, 1500, 1500, 1500)
		for emi := 1; emi <= 3; emi++ {
			require.NoError(t, ApplyInstallmentPayment(ledger, emi, d(1500), paidDate, proof, testNow, staffID))
		}

		var vErr *ValidationError
		err := ApplyInstallmentPayment(ledger, 4, d(1400), paidDate, proof, testNow, staffID)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "paid_amount", vErr.Field)

		require.NoError(t, ApplyInstallmentPayment(ledger, 4, d(1500), paidDate, proof, testNow, staffID))
		assert.True(t, ledger.TotalPending.IsZero())
	})

	t.Run("only the next payable slot accepts a payment", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 3000, 3000)

		var vErr *ValidationError
		err := ApplyInstallmentPayment(ledger, 2, d(3000), paidDate, proof, testNow, staffID)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "emi_number", vErr.Field)
		assert.Nil(t, ledger.EMI2.PaidAmount)
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 3000, 3000)

		var vErr *ValidationError
		err := ApplyInstallmentPayment(ledger, 1, d(3500), paidDate, proof, testNow, staffID)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "paid_amount", vErr.Field)
	})

	t.Run("future paid date is rejected", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 3000, 3000)

		var vErr *ValidationError
		err := ApplyInstallmentPayment(ledger, 1, d(3000), testNow.AddDate(0, 0, 1), proof, testNow, staffID)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "paid_date", vErr.Field)
	})

	t.Run("proof is required when the slot has none", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 3000, 3000)

		var vErr *ValidationError
		err := ApplyInstallmentPayment(ledger, 1, d(3000), paidDate, "", testNow, staffID)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "proof_url", vErr.Field)
	})

	t.Run("fully settled ledger refuses further payments", func(t *testing.T) {
		ledger := scheduledLedger(10000, 4000, 6000)
		require.NoError(t, ApplyInstallmentPayment(ledger, 1, d(6000), paidDate, proof, testNow, staffID))

		var vErr *ValidationError
		err := ApplyInstallmentPayment(ledger, 1, d(1), paidDate, proof, testNow, staffID)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "emi_number", vErr.Field)
	})
}

func TestRecomputeTotalPending(t *testing.T) {
	ledger := scheduledLedger(10000, 4000, 2000, 2000, 2000)
	ledger.EMI1.PaidAmount = dp(2000)
	ledger.EMI2.PaidAmount = dp(1500)

	RecomputeTotalPending(ledger)
	assert.True(t, ledger.TotalPending.Equal(d(2500)))

	// Recomputing again from the same state yields the same figure.
	RecomputeTotalPending(ledger)
	assert.True(t, ledger.TotalPending.Equal(d(2500)))
}

func TestFirstUnpaidInstallment(t *testing.T) {
	ledger := scheduledLedger(10000, 4000, 2000, 2000, 2000)
	assert.Equal(t, 1, FirstUnpaidInstallment(ledger))

	ledger.EMI1.PaidAmount = dp(2000)
	assert.Equal(t, 2, FirstUnpaidInstallment(ledger))

	ledger.EMI2.PaidAmount = dp(1500)
	ledger.EMI3.PaidAmount = dp(2000)
	assert.Equal(t, 0, FirstUnpaidInstallment(ledger))
}

func TestNextPayableInstallment(t *testing.T) {
	t.Run("returns the first slot the credit cannot cover", func(t *testing.T) {
		ledger := scheduledLedger(1100, 100, 500, 500)
		assert.Equal(t, 1, NextPayableInstallment(ledger))
	})

	t.Run("consumes the credit across earlier slots", func(t *testing.T) {
		ledger := scheduledLedger(1600, 600, 500, 500)
		assert.Equal(t, 2, NextPayableInstallment(ledger))
	})

	t.Run("returns none when every active slot is covered", func(t *testing.T) {
		ledger := scheduledLedger(1000, 500, 500)
		assert.Equal(t, 0, NextPayableInstallment(ledger))
	})

	t.Run("skips settled slots", func(t *testing.T) {
		ledger := scheduledLedger(1100, 100, 500, 500)
		ledger.EMI1.PaidAmount = dp(500)
		assert.Equal(t, 2, NextPayableInstallment(ledger))
	})
}

func TestIsInstallmentFullyPaid(t *testing.T) {
	ledger := scheduledLedger(10000, 4000, 3000, 3000)
	ledger.EMI1.PaidAmount = dp(3000)

	assert.True(t, IsInstallmentFullyPaid(ledger, 1))
	assert.False(t, IsInstallmentFullyPaid(ledger, 2))
	// Inactive slots count as settled.
	assert.True(t, IsInstallmentFullyPaid(ledger, 3))
	assert.True(t, IsInstallmentFullyPaid(ledger, 4))
}

func TestCanEditInstallment(t *testing.T) {
	ledger := scheduledLedger(10000, 4000, 3000, 3000)

	assert.True(t, CanEditInstallment(ledger, 1))
	assert.False(t, CanEditInstallment(ledger, 2), "EMI 2 locked while EMI 1 is unpaid")

	ledger.EMI1.PaidAmount = dp(2000)
	assert.True(t, CanEditInstallment(ledger, 1), "partially paid slot stays editable")
	assert.False(t, CanEditInstallment(ledger, 2), "EMI 2 locked while EMI 1 is partially paid")

	ledger.EMI1.PaidAmount = dp(3000)
	assert.False(t, CanEditInstallment(ledger, 1))
	assert.True(t, CanEditInstallment(ledger, 2))

	assert.False(t, CanEditInstallment(ledger, 3), "inactive slot is never editable")
	assert.False(t, CanEditInstallment(ledger, 0))
	assert.False(t, CanEditInstallment(ledger, 5))
}
