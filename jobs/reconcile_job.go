package jobs

import (
	"log"

	"github.com/LaCagee/tutorConnect/services"
)

// ReconcileReviewableRegistry refreshes the in-memory review gate from the
// session and review stores. The registry is a cache of the predicate
// "completed and not yet reviewed"; this job keeps it honest after restarts
// or missed deliveries.
func ReconcileReviewableRegistry() {
	log.Println("Running job: ReconcileReviewableRegistry...")

	if err := services.Gate.Rebuild(); err != nil {
		log.Printf("Error rebuilding reviewable registry: %v", err)
	}
}
