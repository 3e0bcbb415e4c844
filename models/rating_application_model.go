package models

import "time"

// RatingApplication records which reviews have already been folded into a
// tutor's aggregate rating. The composite unique index is what makes the
// rating consumer safe to run more than once for the same review.
type RatingApplication struct {
	ID       uint `gorm:"primaryKey"`
	TutorID  uint `gorm:"not null;uniqueIndex:idx_rating_tutor_review"`
	ReviewID uint `gorm:"not null;uniqueIndex:idx_rating_tutor_review"`

	CreatedAt time.Time
}
