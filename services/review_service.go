package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReviewInput struct {
	SessionID   uint   `json:"sessionId" validate:"required"`
	TutorID     uint   `json:"tutorId" validate:"required"`
	StudentID   uint   `json:"studentId" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment"`
	Punctuality *int   `json:"punctuality" validate:"omitempty,min=1,max=5"`
	Clarity     *int   `json:"clarity" validate:"omitempty,min=1,max=5"`
	Patience    *int   `json:"patience" validate:"omitempty,min=1,max=5"`
}

// CreateReview enforces the one-review-per-session invariant. The gate check
// is a fast pre-filter; the insert itself relies on the unique index on
// session_id, so of two racing submissions exactly one row lands and the
// other caller gets ErrConflict.
func CreateReview(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var existing models.Review
	err := database.DB.Where("session_id = ?", input.SessionID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: session %d already has a review", ErrConflict, input.SessionID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !Gate.Completed(input.SessionID) {
		return nil, fmt.Errorf("%w: session %d", ErrNotEligible, input.SessionID)
	}

	review := models.Review{
		SessionID:   input.SessionID,
		TutorID:     input.TutorID,
		StudentID:   input.StudentID,
		Rating:      input.Rating,
		Comment:     input.Comment,
		Punctuality: input.Punctuality,
		Clarity:     input.Clarity,
		Patience:    input.Patience,
	}

	result := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(&review)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: session %d already has a review", ErrConflict, input.SessionID)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: session %d already has a review", ErrConflict, input.SessionID)
	}

	Gate.Remove(review.SessionID)

	err = events.Publish(ctx, events.ReviewCreated, events.ReviewCreatedPayload{
		ReviewID:  review.ID,
		SessionID: review.SessionID,
		TutorID:   review.TutorID,
		StudentID: review.StudentID,
		Rating:    review.Rating,
		Comment:   review.Comment,
	})
	if err != nil {
		log.Printf("🔥 review.created not published for review %d: %v", review.ID, err)
		return &review, err
	}

	return &review, nil
}

type ReviewFilter struct {
	TutorID   uint
	StudentID uint
	SessionID uint
}

func ListReviews(filter ReviewFilter) ([]models.Review, error) {
	query := database.DB.Order("created_at desc")
	if filter.TutorID != 0 {
		query = query.Where("tutor_id = ?", filter.TutorID)
	}
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.SessionID != 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func GetReview(id uint) (*models.Review, error) {
	var review models.Review
	if err := database.DB.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review and reverses its effect on the tutor's
// aggregate by recomputing mean and count from the remaining rows, all in one
// transaction. The matching rating application row is dropped so a replayed
// review.created for a deleted review cannot be re-applied either.
func DeleteReview(ctx context.Context, id uint) error {
	review, err := GetReview(id)
	if err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(review).Error; err != nil {
			return err
		}
		if err := tx.Where("tutor_id = ? AND review_id = ?", review.TutorID, review.ID).
			Delete(&models.RatingApplication{}).Error; err != nil {
			return err
		}
		return recomputeTutorRating(tx, review.TutorID)
	})
}

func recomputeTutorRating(tx *gorm.DB, tutorID uint) error {
	var aggregate struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Where("tutor_id = ?", tutorID).
		Select("coalesce(avg(rating), 0) as avg, count(*) as count").
		Scan(&aggregate).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.User{}).Where("id = ?", tutorID).Updates(map[string]interface{}{
		"rating":        aggregate.Avg,
		"total_reviews": aggregate.Count,
	}).Error
}

type TutorStats struct {
	TutorID       uint            `json:"tutorId"`
	TotalReviews  int64           `json:"totalReviews"`
	AverageRating float64         `json:"averageRating"`
	Distribution  map[int]int64   `json:"distribution"`
	Recent        []models.Review `json:"recentReviews"`
}

// TutorReviewStats aggregates directly over the review store, independent of
// the incremental rating kept on the tutor record.
func TutorReviewStats(tutorID uint) (*TutorStats, error) {
	stats := &TutorStats{
		TutorID:      tutorID,
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		Recent:       []models.Review{},
	}

	var counts []struct {
		Rating int
		Count  int64
	}
	err := database.DB.Model(&models.Review{}).
		Where("tutor_id = ?", tutorID).
		Select("rating, count(*) as count").
		Group("rating").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	var sum int64
	for _, c := range counts {
		stats.Distribution[c.Rating] = c.Count
		stats.TotalReviews += c.Count
		sum += int64(c.Rating) * c.Count
	}
	if stats.TotalReviews > 0 {
		mean := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(mean*100) / 100
	}

	err = database.DB.Where("tutor_id = ?", tutorID).
		Order("created_at desc").
		Limit(5).
		Find(&stats.Recent).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
