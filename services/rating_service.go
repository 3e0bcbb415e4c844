package services

import (
	"encoding/json"
	"log"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyReviewRating folds one review.created event into the tutor's running
// mean: new_mean = (mean*count + rating) / (count+1). Delivery is
// at-least-once, so the update is keyed by (tutor_id, review_id): the rating
// application row is inserted first with do-nothing conflict handling, and a
// zero-row insert means the review was already applied and the redelivery is
// acknowledged without touching the aggregate.
func ApplyReviewRating(data []byte) error {
	var payload events.ReviewCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		application := models.RatingApplication{
			TutorID:  payload.TutorID,
			ReviewID: payload.ReviewID,
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tutor_id"}, {Name: "review_id"}},
			DoNothing: true,
		}).Create(&application)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			log.Printf("Review %d already applied to tutor %d, skipping", payload.ReviewID, payload.TutorID)
			return nil
		}

		update := tx.Model(&models.User{}).
			Where("id = ?", payload.TutorID).
			Updates(map[string]interface{}{
				"rating":        gorm.Expr("(rating * total_reviews + ?) / (total_reviews + 1)", float64(payload.Rating)),
				"total_reviews": gorm.Expr("total_reviews + 1"),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			// Tutor unknown to this service; ack rather than requeue forever.
			log.Printf("⚠️ Tutor %d not found while applying review %d", payload.TutorID, payload.ReviewID)
			return nil
		}

		log.Printf("⭐ Rating updated for tutor %d (review %d)", payload.TutorID, payload.ReviewID)
		return nil
	})
}

// StartRatingAggregator subscribes the aggregator to review.created.
func StartRatingAggregator() error {
	return events.Subscribe(events.ReviewCreated, ApplyReviewRating)
}
