package services

import (
	"testing"
	"time"

	"github.com/brightsteps/institute_backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectionFixtures() (*models.PaymentLedger, *models.Student) {
	trainer := models.Trainer{
		ID:          uuid.New(),
		Code:        "TRN0003",
		FullName:    "Grace Wairimu",
		TrainerType: "onboard",
	}
	batch := &models.Batch{
		ID:      uuid.New(),
		Name:    "GO-2026-MAR",
		Trainer: trainer,
	}
	consultant := &models.Consultant{
		ID:       uuid.New(),
		Code:     "CON0001",
		FullName: "Peter Otieno",
	}
	student := &models.Student{
		ID:           uuid.New(),
		Code:         "STU0042",
		FullName:     "Amina Hassan",
		Phone:        "+254700000042",
		CourseStatus: "ongoing",
		Course:       models.Course{ID: uuid.New(), Code: "CRS0002", Name: "Backend Engineering"},
		Batch:        batch,
		Consultant:   consultant,
	}

	ledger := scheduledLedger(10000, 4000, 3000, 3000)
	ledger.Code = "PMT0007"
	ledger.StudentID = student.ID
	return ledger, student
}

func TestBuildPendingProjection(t *testing.T) {
	t.Run("pending ledger produces a Pending snapshot with next EMI fields", func(t *testing.T) {
		ledger, student := projectionFixtures()

		record := BuildPendingProjection(ledger, student)

		assert.Equal(t, models.PendingStatusPending, record.Status)
		assert.True(t, record.PendingAmount.Equal(d(6000)))
		assert.Equal(t, student.ID, record.StudentID)
		assert.Equal(t, "STU0042", record.StudentCode)
		assert.Equal(t, "Backend Engineering", record.CourseName)
		require.NotNil(t, record.BatchName)
		assert.Equal(t, "GO-2026-MAR", *record.BatchName)
		require.NotNil(t, record.TrainerName)
		assert.Equal(t, "Grace Wairimu", *record.TrainerName)
		assert.Equal(t, "onboard", *record.TrainerType)
		require.NotNil(t, record.ConsultantName)
		assert.Equal(t, "Peter Otieno", *record.ConsultantName)

		require.NotNil(t, record.NextEMINumber)
		assert.Equal(t, 1, *record.NextEMINumber)
		require.NotNil(t, record.NextEMIAmount)
		assert.True(t, record.NextEMIAmount.Equal(d(3000)))
		assert.Equal(t, *ledger.EMI1.DueDate, *record.NextDueDate)
	})

	t.Run("settled ledger produces a Paid snapshot with nulled next fields", func(t *testing.T) {
		ledger, student := projectionFixtures()
		ledger.EMI1.PaidAmount = dp(3000)
		ledger.EMI2.PaidAmount = dp(3000)
		RecomputeTotalPending(ledger)

		record := BuildPendingProjection(ledger, student)

		assert.Equal(t, models.PendingStatusPaid, record.Status)
		assert.True(t, record.PendingAmount.IsZero())
		assert.Nil(t, record.NextEMINumber)
		assert.Nil(t, record.NextEMIAmount)
		assert.Nil(t, record.NextDueDate)
	})

	t.Run("unassigned batch and consultant leave their fields nil", func(t *testing.T) {
		ledger, student := projectionFixtures()
		student.Batch = nil
		student.Consultant = nil

		record := BuildPendingProjection(ledger, student)

		assert.Nil(t, record.BatchName)
		assert.Nil(t, record.TrainerName)
		assert.Nil(t, record.TrainerType)
		assert.Nil(t, record.ConsultantName)
	})

	t.Run("refresh is idempotent", func(t *testing.T) {
		ledger, student := projectionFixtures()
		ledger.EMI1.PaidAmount = dp(2000)
		RecomputeTotalPending(ledger)

		first := BuildPendingProjection(ledger, student)
		second := BuildPendingProjection(ledger, student)

		assert.Equal(t, first, second)
	})

	t.Run("carried-forward slot drives the next EMI fields", func(t *testing.T) {
		ledger, student := projectionFixtures()
		paidDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		require.NoError(t, ApplyInstallmentPayment(ledger, 1, d(2000), paidDate, "https://proofs.test/emi.png", testNow, uuid.New()))

		record := BuildPendingProjection(ledger, student)

		require.NotNil(t, record.NextEMINumber)
		assert.Equal(t, 2, *record.NextEMINumber)
		assert.True(t, record.NextEMIAmount.Equal(d(4000)))
	})
}

func TestLatestUpdater(t *testing.T) {
	ledger := scheduledLedger(10000, 4000, 3000, 3000)
	assert.Nil(t, latestUpdater(ledger))

	first := uuid.New()
	second := uuid.New()
	ledger.EMI1.UpdatedByID = &first
	assert.Equal(t, &first, latestUpdater(ledger))

	ledger.EMI2.UpdatedByID = &second
	assert.Equal(t, &second, latestUpdater(ledger), "the most recent installment wins")
}
