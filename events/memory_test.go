package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishWrapsPayloadInEnvelope(t *testing.T) {
	bus := NewMemoryBus()

	var got SessionCreatedPayload
	require.NoError(t, bus.Subscribe(SessionCreated, func(data []byte) error {
		return json.Unmarshal(data, &got)
	}))

	payload := SessionCreatedPayload{
		SessionID: 1,
		TutorID:   7,
		StudentID: 9,
		Subject:   "Calculus",
		Date:      "2026-09-15",
		Time:      "16:00",
	}
	require.NoError(t, bus.Publish(context.Background(), SessionCreated, payload))
	require.Equal(t, payload, got)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	body, err := newEnvelope(ReviewCreated, ReviewCreatedPayload{ReviewID: 1, Rating: 4})
	require.NoError(t, err)

	envelope, err := decodeEnvelope(body)
	require.NoError(t, err)
	require.Equal(t, ReviewCreated, envelope.Event)
	require.False(t, envelope.Timestamp.IsZero())

	var payload ReviewCreatedPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	require.EqualValues(t, 1, payload.ReviewID)
	require.Equal(t, 4, payload.Rating)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := decodeEnvelope([]byte("not an envelope"))
	require.Error(t, err)
}

func TestSubscribersOnlySeeTheirTopic(t *testing.T) {
	bus := NewMemoryBus()

	var created, completed int
	require.NoError(t, bus.Subscribe(SessionCreated, func([]byte) error {
		created++
		return nil
	}))
	require.NoError(t, bus.Subscribe(SessionCompleted, func([]byte) error {
		completed++
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, SessionCreated, SessionCreatedPayload{SessionID: 1}))
	require.NoError(t, bus.Publish(ctx, SessionCreated, SessionCreatedPayload{SessionID: 2}))
	require.NoError(t, bus.Publish(ctx, SessionCompleted, SessionCompletedPayload{SessionID: 1}))

	require.Equal(t, 2, created)
	require.Equal(t, 1, completed)
}

func TestHandlerErrorDoesNotFailPublisher(t *testing.T) {
	bus := NewMemoryBus()

	var reached bool
	require.NoError(t, bus.Subscribe(SessionCreated, func([]byte) error {
		return errors.New("consumer down")
	}))
	require.NoError(t, bus.Subscribe(SessionCreated, func([]byte) error {
		reached = true
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), SessionCreated, SessionCreatedPayload{SessionID: 1}))
	require.True(t, reached)
}

func TestDefaultBusHelpers(t *testing.T) {
	previous := Default
	t.Cleanup(func() { Default = previous })

	Use(NewMemoryBus())

	var delivered int
	require.NoError(t, Subscribe(ReviewCreated, func([]byte) error {
		delivered++
		return nil
	}))
	require.NoError(t, Publish(context.Background(), ReviewCreated, ReviewCreatedPayload{ReviewID: 1}))
	require.Equal(t, 1, delivered)
}

func TestCloseDropsSubscriptions(t *testing.T) {
	bus := NewMemoryBus()

	var delivered int
	require.NoError(t, bus.Subscribe(SessionCreated, func([]byte) error {
		delivered++
		return nil
	}))
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Publish(context.Background(), SessionCreated, SessionCreatedPayload{SessionID: 1}))
	require.Zero(t, delivered)
}
