package models

import "time"

const (
	SessionPending   = "pending"
	SessionConfirmed = "confirmed"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

const (
	ModalityOnline   = "online"
	ModalityInPerson = "in_person"
)

type Session struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	TutorID   uint    `gorm:"not null;index" json:"tutorId"`
	StudentID uint    `gorm:"not null;index" json:"studentId"`
	Subject   string  `gorm:"size:100;not null" json:"subject"`
	Date      string  `gorm:"size:10;not null" json:"date"`
	Time      string  `gorm:"size:8;not null" json:"time"`
	Duration  int     `gorm:"not null;default:60" json:"duration"`
	Price     float64 `gorm:"type:numeric(10,2);not null" json:"price"`
	Status    string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	Modality  string  `gorm:"size:20;not null;default:'online'" json:"modality"`
	Notes     string  `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
