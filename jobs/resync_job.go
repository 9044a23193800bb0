package jobs

import (
	"log"

	"github.com/brightsteps/institute_backend/database"
	"github.com/brightsteps/institute_backend/models"
	"github.com/brightsteps/institute_backend/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResyncPendingProjections re-derives every pending projection. The refresh
// is idempotent, so the sweep only matters for rows left stale by a resync
// that failed after its ledger save.
func ResyncPendingProjections() {
	log.Println("Running job: ResyncPendingProjections...")

	var ledgerIDs []uuid.UUID
	if err := database.DB.Model(&models.PaymentLedger{}).Pluck("id", &ledgerIDs).Error; err != nil {
		log.Printf("Error listing ledgers for resync: %v", err)
		return
	}

	failed := 0
	for _, ledgerID := range ledgerIDs {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			return services.ResyncPendingProjection(tx, ledgerID)
		})
		if err != nil {
			failed++
			log.Printf("🔥 Resync failed for ledger %s: %v", ledgerID, err)
		}
	}

	if failed > 0 {
		log.Printf("ResyncPendingProjections finished with %d failures out of %d ledgers", failed, len(ledgerIDs))
	}
}
