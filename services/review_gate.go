package services

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"gorm.io/gorm"
)

// ReviewGate tracks which sessions are currently open for review. It is a
// warm cache over the predicate "status = completed and no review exists";
// the review store keeps the authoritative uniqueness guarantee, so losing
// this registry can never let a duplicate review through.
type ReviewGate struct {
	mu       sync.Mutex
	sessions map[uint]struct{}
}

// Gate is the process-wide registry, consulted by review creation and fed by
// the session.completed consumer.
var Gate = NewReviewGate()

func NewReviewGate() *ReviewGate {
	return &ReviewGate{sessions: make(map[uint]struct{})}
}

// Add marks a session reviewable. Adding an already-present id is a no-op,
// which is what makes duplicate deliveries of session.completed harmless.
func (g *ReviewGate) Add(sessionID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID] = struct{}{}
}

func (g *ReviewGate) Remove(sessionID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, sessionID)
}

func (g *ReviewGate) Completed(sessionID uint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.sessions[sessionID]
	return ok
}

// CanReview reports eligibility with a human-readable reason. The review
// store is checked first because it is authoritative; the registry only
// answers whether the completion event has been observed.
func (g *ReviewGate) CanReview(sessionID uint) (bool, string) {
	var existing models.Review
	err := database.DB.Where("session_id = ?", sessionID).First(&existing).Error
	if err == nil {
		return false, "this session already has a review"
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("🔥 Failed to check existing review for session %d: %v", sessionID, err)
		return false, "could not verify review status"
	}

	if !g.Completed(sessionID) {
		return false, "the session must be completed before it can be reviewed"
	}
	return true, "session completed, review allowed"
}

// Rebuild repopulates the registry from completed-but-unreviewed sessions.
// Called on startup and periodically, so a process restart does not leave the
// gate rejecting legitimate reviews.
func (g *ReviewGate) Rebuild() error {
	var ids []uint
	err := database.DB.Model(&models.Session{}).
		Joins("LEFT JOIN reviews ON reviews.session_id = sessions.id").
		Where("sessions.status = ? AND reviews.id IS NULL", models.SessionCompleted).
		Pluck("sessions.id", &ids).Error
	if err != nil {
		return err
	}

	rebuilt := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		rebuilt[id] = struct{}{}
	}

	g.mu.Lock()
	g.sessions = rebuilt
	g.mu.Unlock()

	log.Printf("✅ Reviewable registry rebuilt with %d session(s)", len(ids))
	return nil
}

// Start subscribes the gate to session.completed.
func (g *ReviewGate) Start() error {
	return events.Subscribe(events.SessionCompleted, func(data []byte) error {
		var payload events.SessionCompletedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}

		g.Add(payload.SessionID)
		log.Printf("✅ Session %d can now be reviewed", payload.SessionID)
		return nil
	})
}
