package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/stretchr/testify/require"
)

func seedTutor(t *testing.T, id uint) {
	t.Helper()

	tutor := models.User{
		FullName: "Ana Tutor",
		Email:    "ana@tutorconnect.test",
		Password: "irrelevant",
		Role:     "tutor",
	}
	tutor.ID = id
	require.NoError(t, database.DB.Create(&tutor).Error)
}

func reviewPayload(t *testing.T, reviewID uint, rating int) []byte {
	t.Helper()

	data, err := json.Marshal(events.ReviewCreatedPayload{
		ReviewID:  reviewID,
		SessionID: reviewID,
		TutorID:   7,
		StudentID: 9,
		Rating:    rating,
	})
	require.NoError(t, err)
	return data
}

func tutorAggregate(t *testing.T) (float64, int) {
	t.Helper()

	var tutor models.User
	require.NoError(t, database.DB.First(&tutor, 7).Error)
	return tutor.Rating, tutor.TotalReviews
}

func TestStreamingMeanMatchesArithmeticMean(t *testing.T) {
	setupTest(t)
	seedTutor(t, 7)

	steps := []struct {
		rating    int
		wantMean  float64
		wantCount int
	}{
		{rating: 5, wantMean: 5.0, wantCount: 1},
		{rating: 3, wantMean: 4.0, wantCount: 2},
		{rating: 4, wantMean: 4.0, wantCount: 3},
	}
	for i, step := range steps {
		require.NoError(t, ApplyReviewRating(reviewPayload(t, uint(i+1), step.rating)))

		mean, count := tutorAggregate(t)
		require.InDelta(t, step.wantMean, mean, 0.001)
		require.Equal(t, step.wantCount, count)
	}
}

func TestRedeliveredReviewIsAppliedOnce(t *testing.T) {
	setupTest(t)
	seedTutor(t, 7)

	payload := reviewPayload(t, 1, 5)
	require.NoError(t, ApplyReviewRating(payload))
	require.NoError(t, ApplyReviewRating(payload))

	mean, count := tutorAggregate(t)
	require.InDelta(t, 5.0, mean, 0.001)
	require.Equal(t, 1, count)

	var applications int64
	require.NoError(t, database.DB.Model(&models.RatingApplication{}).Count(&applications).Error)
	require.EqualValues(t, 1, applications)
}

func TestAggregatorConsumesReviewCreated(t *testing.T) {
	setupTest(t)
	seedTutor(t, 7)
	require.NoError(t, StartRatingAggregator())

	ctx := context.Background()
	payload := events.ReviewCreatedPayload{
		ReviewID:  1,
		SessionID: 1,
		TutorID:   7,
		StudentID: 9,
		Rating:    4,
	}
	require.NoError(t, events.Publish(ctx, events.ReviewCreated, payload))
	require.NoError(t, events.Publish(ctx, events.ReviewCreated, payload))

	mean, count := tutorAggregate(t)
	require.InDelta(t, 4.0, mean, 0.001)
	require.Equal(t, 1, count)
}

func TestUnknownTutorIsSkipped(t *testing.T) {
	setupTest(t)

	require.NoError(t, ApplyReviewRating(reviewPayload(t, 1, 5)))

	var tutors int64
	require.NoError(t, database.DB.Model(&models.User{}).Count(&tutors).Error)
	require.EqualValues(t, 0, tutors)
}

func TestMalformedReviewPayloadIsRejected(t *testing.T) {
	setupTest(t)

	require.Error(t, ApplyReviewRating([]byte("not json")))
}
