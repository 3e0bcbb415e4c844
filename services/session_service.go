package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// sessionTransitions is the lifecycle graph. Completed and cancelled are
// terminal; confirmed only moves forward to completed or out to cancelled.
var sessionTransitions = map[string][]string{
	models.SessionPending:   {models.SessionConfirmed, models.SessionCancelled},
	models.SessionConfirmed: {models.SessionCompleted, models.SessionCancelled},
}

func canTransition(from, to string) bool {
	for _, allowed := range sessionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type CreateSessionInput struct {
	TutorID   uint    `json:"tutorId" validate:"required"`
	StudentID uint    `json:"studentId" validate:"required"`
	Subject   string  `json:"subject" validate:"required,max=100"`
	Date      string  `json:"date" validate:"required"`
	Time      string  `json:"time" validate:"required"`
	Duration  int     `json:"duration" validate:"omitempty,gt=0"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Modality  string  `json:"modality" validate:"omitempty,oneof=online in_person"`
	Notes     string  `json:"notes"`
}

// CreateSession persists a new pending session and then announces it.
// The publish happens only after the committed write; if the bus is down the
// session is still created and the error wraps events.ErrTransport so the
// handler can report the pending propagation.
func CreateSession(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	session := models.Session{
		TutorID:   input.TutorID,
		StudentID: input.StudentID,
		Subject:   input.Subject,
		Date:      input.Date,
		Time:      input.Time,
		Duration:  input.Duration,
		Price:     input.Price,
		Status:    models.SessionPending,
		Modality:  input.Modality,
		Notes:     input.Notes,
	}
	if session.Duration == 0 {
		session.Duration = 60
	}
	if session.Modality == "" {
		session.Modality = models.ModalityOnline
	}

	if err := database.DB.Create(&session).Error; err != nil {
		return nil, err
	}

	err := events.Publish(ctx, events.SessionCreated, events.SessionCreatedPayload{
		SessionID: session.ID,
		TutorID:   session.TutorID,
		StudentID: session.StudentID,
		Subject:   session.Subject,
		Date:      session.Date,
		Time:      session.Time,
	})
	if err != nil {
		log.Printf("🔥 session.created not published for session %d: %v", session.ID, err)
		return &session, err
	}

	return &session, nil
}

// transitionSession moves a session along the lifecycle graph. The update is
// guarded by the current status in the WHERE clause, so two racing transitions
// cannot both apply; the loser sees zero affected rows.
func transitionSession(id uint, to string) (*models.Session, error) {
	var session models.Session
	if err := database.DB.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %d", ErrNotFound, id)
		}
		return nil, err
	}

	if !canTransition(session.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.Status, to)
	}

	result := database.DB.Model(&models.Session{}).
		Where("id = ? AND status = ?", id, session.Status).
		Update("status", to)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: session %d changed concurrently", ErrConflict, id)
	}

	session.Status = to
	return &session, nil
}

func ConfirmSession(ctx context.Context, id uint) (*models.Session, error) {
	return transitionSession(id, models.SessionConfirmed)
}

func CancelSession(ctx context.Context, id uint) (*models.Session, error) {
	return transitionSession(id, models.SessionCancelled)
}

// CompleteSession finishes a confirmed session and announces the completion,
// which is what opens the review window downstream.
func CompleteSession(ctx context.Context, id uint) (*models.Session, error) {
	session, err := transitionSession(id, models.SessionCompleted)
	if err != nil {
		return nil, err
	}

	err = events.Publish(ctx, events.SessionCompleted, events.SessionCompletedPayload{
		SessionID: session.ID,
		TutorID:   session.TutorID,
		StudentID: session.StudentID,
		Subject:   session.Subject,
	})
	if err != nil {
		log.Printf("🔥 session.completed not published for session %d: %v", session.ID, err)
		return session, err
	}

	return session, nil
}

type SessionFilter struct {
	TutorID   uint
	StudentID uint
	Status    string
}

func ListSessions(filter SessionFilter) ([]models.Session, error) {
	query := database.DB.Order("date desc, time desc")
	if filter.TutorID != 0 {
		query = query.Where("tutor_id = ?", filter.TutorID)
	}
	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var sessions []models.Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func GetSession(id uint) (*models.Session, error) {
	var session models.Session
	if err := database.DB.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSession refuses to remove a session that a review still references,
// since the review store is the system of record for rating recomputation.
func DeleteSession(id uint) error {
	session, err := GetSession(id)
	if err != nil {
		return err
	}

	var reviews int64
	if err := database.DB.Model(&models.Review{}).Where("session_id = ?", id).Count(&reviews).Error; err != nil {
		return err
	}
	if reviews > 0 {
		return fmt.Errorf("%w: session %d is referenced by a review", ErrConflict, id)
	}

	return database.DB.Delete(session).Error
}
