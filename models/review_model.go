package models

import "time"

type Review struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID uint   `gorm:"not null;uniqueIndex" json:"sessionId"`
	TutorID   uint   `gorm:"not null;index" json:"tutorId"`
	StudentID uint   `gorm:"not null" json:"studentId"`
	Rating    int    `gorm:"not null" json:"rating"`
	Comment   string `gorm:"type:text" json:"comment"`

	Punctuality *int `json:"punctuality"`
	Clarity     *int `json:"clarity"`
	Patience    *int `json:"patience"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
