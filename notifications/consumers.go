package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/services"
	socket "github.com/LaCagee/tutorConnect/websocket"
)

// StartConsumers wires the notification flows to the event bus. Emails and
// pushes are best-effort: lookup or delivery failures are logged and the
// message is still acknowledged, matching the contract that notifications
// never block state propagation.
func StartConsumers(directory *services.UserDirectory) error {
	err := events.Subscribe(events.SessionCreated, func(data []byte) error {
		var payload events.SessionCreatedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}

		tutor, err := directory.FetchUser(context.Background(), payload.TutorID)
		if err != nil {
			log.Printf("⚠️ Skipping session.created notification: %v", err)
			return nil
		}
		student, err := directory.FetchUser(context.Background(), payload.StudentID)
		if err != nil {
			log.Printf("⚠️ Skipping session.created notification: %v", err)
			return nil
		}

		html := sessionScheduledTemplate(tutor.FullName, student.FullName, payload.Subject, payload.Date, payload.Time)
		SendEmail(tutor.FullName, tutor.Email, "🎓 New Tutoring Session Scheduled", html)
		socket.Notify(tutor.ID, events.SessionCreated, "New session scheduled",
			fmt.Sprintf("%s booked a %s session with you on %s at %s.", student.FullName, payload.Subject, payload.Date, payload.Time))
		return nil
	})
	if err != nil {
		return err
	}

	err = events.Subscribe(events.SessionCompleted, func(data []byte) error {
		var payload events.SessionCompletedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}

		tutor, err := directory.FetchUser(context.Background(), payload.TutorID)
		if err != nil {
			log.Printf("⚠️ Skipping session.completed notification: %v", err)
			return nil
		}
		student, err := directory.FetchUser(context.Background(), payload.StudentID)
		if err != nil {
			log.Printf("⚠️ Skipping session.completed notification: %v", err)
			return nil
		}

		html := sessionCompletedTemplate(student.FullName, tutor.FullName, payload.Subject)
		SendEmail(student.FullName, student.Email, "✅ Session Completed - Leave a Review", html)
		socket.Notify(student.ID, events.SessionCompleted, "Session completed",
			fmt.Sprintf("Your %s session with %s is complete. Leave a review!", payload.Subject, tutor.FullName))
		return nil
	})
	if err != nil {
		return err
	}

	return events.Subscribe(events.ReviewCreated, func(data []byte) error {
		var payload events.ReviewCreatedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}

		tutor, err := directory.FetchUser(context.Background(), payload.TutorID)
		if err != nil {
			log.Printf("⚠️ Skipping review.created notification: %v", err)
			return nil
		}

		html := reviewReceivedTemplate(tutor.FullName, payload.Rating, payload.Comment)
		SendEmail(tutor.FullName, tutor.Email, "🌟 New Review Received", html)
		socket.Notify(tutor.ID, events.ReviewCreated, "New review received",
			fmt.Sprintf("You received a %d/5 rating.", payload.Rating))
		return nil
	})
}
