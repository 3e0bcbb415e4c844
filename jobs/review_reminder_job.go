package jobs

import (
	"context"
	"log"
	"time"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
)

// RemindPendingReviews re-announces completion for sessions that finished a
// day ago and still have no review. Re-publishing session.completed is safe
// because every consumer is idempotent; the notification service reacts by
// emailing the student its review invitation again.
func RemindPendingReviews() {
	log.Println("Running job: RemindPendingReviews...")

	now := time.Now()
	upperBound := now.Add(-24 * time.Hour)
	lowerBound := now.Add(-48 * time.Hour)

	var sessions []models.Session
	err := database.DB.
		Joins("LEFT JOIN reviews ON reviews.session_id = sessions.id").
		Where("sessions.status = ? AND reviews.id IS NULL AND sessions.updated_at BETWEEN ? AND ?",
			models.SessionCompleted, lowerBound, upperBound).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error finding sessions pending review: %v", err)
		return
	}

	if len(sessions) == 0 {
		log.Println("No sessions pending review.")
		return
	}

	for _, session := range sessions {
		err := events.Publish(context.Background(), events.SessionCompleted, events.SessionCompletedPayload{
			SessionID: session.ID,
			TutorID:   session.TutorID,
			StudentID: session.StudentID,
			Subject:   session.Subject,
		})
		if err != nil {
			log.Printf("Error re-announcing session %d: %v", session.ID, err)
		}
	}

	log.Printf("Sent review reminder for %d session(s).", len(sessions))
}
