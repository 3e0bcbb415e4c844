// Package events is the messaging backbone shared by every service. Messages
// are wrapped in a small JSON envelope and routed by event name through a
// durable topic exchange; delivery is at-least-once, so every subscriber
// handler must tolerate seeing the same logical event more than once.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	SessionCreated   = "session.created"
	SessionCompleted = "session.completed"
	ReviewCreated    = "review.created"
)

// ErrTransport reports that the bus could not be reached. The local state
// change that triggered the publish is already committed when this happens,
// so callers surface it as a degraded success instead of rolling back.
var ErrTransport = errors.New("event transport unavailable")

type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type SessionCreatedPayload struct {
	SessionID uint   `json:"sessionId"`
	TutorID   uint   `json:"tutorId"`
	StudentID uint   `json:"studentId"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type SessionCompletedPayload struct {
	SessionID uint   `json:"sessionId"`
	TutorID   uint   `json:"tutorId"`
	StudentID uint   `json:"studentId"`
	Subject   string `json:"subject"`
}

type ReviewCreatedPayload struct {
	ReviewID  uint   `json:"reviewId"`
	SessionID uint   `json:"sessionId"`
	TutorID   uint   `json:"tutorId"`
	StudentID uint   `json:"studentId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Handler consumes the data portion of an envelope. A nil return acknowledges
// the message; any error leaves it unacknowledged for redelivery.
type Handler func(data []byte) error

type Bus interface {
	Publish(ctx context.Context, event string, payload interface{}) error
	Subscribe(event string, handler Handler) error
	Close() error
}

// Default is the process-wide bus, set once by each service's main.
var Default Bus

func Use(bus Bus) {
	Default = bus
}

func Publish(ctx context.Context, event string, payload interface{}) error {
	return Default.Publish(ctx, event, payload)
}

func Subscribe(event string, handler Handler) error {
	return Default.Subscribe(event, handler)
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func newEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
