package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"size:255;not null" json:"full_name"`
	Email    string `gorm:"size:255;not null;unique" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:'student'" json:"role"`

	Subjects     string  `gorm:"type:text" json:"subjects"`
	PricePerHour float64 `gorm:"type:numeric(10,2);default:0.00" json:"price_per_hour"`
	Bio          string  `gorm:"type:text" json:"bio"`

	Rating       float64 `gorm:"default:0" json:"rating"`
	TotalReviews int     `gorm:"default:0" json:"total_reviews"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
