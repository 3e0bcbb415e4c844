package services

import (
	"context"
	"sync"
	"testing"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func completedSession(t *testing.T) *models.Session {
	t.Helper()
	ctx := context.Background()

	session, err := CreateSession(ctx, validSessionInput())
	require.NoError(t, err)
	_, err = ConfirmSession(ctx, session.ID)
	require.NoError(t, err)
	session, err = CompleteSession(ctx, session.ID)
	require.NoError(t, err)
	Gate.Add(session.ID)
	return session
}

func TestCreateReviewValidation(t *testing.T) {
	bus := setupTest(t)
	published := record(t, bus, events.ReviewCreated)

	cases := map[string]CreateReviewInput{
		"missing session": {TutorID: 7, StudentID: 9, Rating: 4},
		"missing tutor":   {SessionID: 1, StudentID: 9, Rating: 4},
		"missing student": {SessionID: 1, TutorID: 7, Rating: 4},
		"rating too low":  {SessionID: 1, TutorID: 7, StudentID: 9, Rating: 0},
		"rating too high": {SessionID: 1, TutorID: 7, StudentID: 9, Rating: 6},
		"bad sub-rating":  {SessionID: 1, TutorID: 7, StudentID: 9, Rating: 4, Clarity: intPtr(9)},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CreateReview(context.Background(), input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	database.DB.Model(&models.Review{}).Count(&count)
	require.Zero(t, count)
	require.Equal(t, 0, published.count())
}

func TestCreateReviewRequiresCompletion(t *testing.T) {
	bus := setupTest(t)
	published := record(t, bus, events.ReviewCreated)
	ctx := context.Background()

	session, err := CreateSession(ctx, validSessionInput())
	require.NoError(t, err)

	_, err = CreateReview(ctx, CreateReviewInput{
		SessionID: session.ID,
		TutorID:   7,
		StudentID: 9,
		Rating:    4,
	})
	require.ErrorIs(t, err, ErrNotEligible)

	var count int64
	database.DB.Model(&models.Review{}).Count(&count)
	require.Zero(t, count)
	require.Equal(t, 0, published.count())
}

func TestCreateReviewSuccessPublishes(t *testing.T) {
	bus := setupTest(t)
	published := record(t, bus, events.ReviewCreated)
	session := completedSession(t)

	review, err := CreateReview(context.Background(), CreateReviewInput{
		SessionID:   session.ID,
		TutorID:     7,
		StudentID:   9,
		Rating:      4,
		Comment:     "Great explanations",
		Punctuality: intPtr(5),
	})
	require.NoError(t, err)
	require.NotZero(t, review.ID)
	require.False(t, Gate.Completed(session.ID))

	require.Equal(t, 1, published.count())
	var payload events.ReviewCreatedPayload
	published.last(t, &payload)
	require.Equal(t, review.ID, payload.ReviewID)
	require.Equal(t, session.ID, payload.SessionID)
	require.Equal(t, uint(7), payload.TutorID)
	require.Equal(t, uint(9), payload.StudentID)
	require.Equal(t, 4, payload.Rating)
	require.Equal(t, "Great explanations", payload.Comment)
}

func TestAtMostOneReviewPerSession(t *testing.T) {
	bus := setupTest(t)
	published := record(t, bus, events.ReviewCreated)
	session := completedSession(t)

	input := CreateReviewInput{SessionID: session.ID, TutorID: 7, StudentID: 9, Rating: 4}

	first, firstErr := CreateReview(context.Background(), input)
	_, secondErr := CreateReview(context.Background(), input)

	require.NoError(t, firstErr)
	require.NotNil(t, first)
	require.ErrorIs(t, secondErr, ErrConflict)

	var count int64
	database.DB.Model(&models.Review{}).Where("session_id = ?", session.ID).Count(&count)
	require.EqualValues(t, 1, count)
	require.Equal(t, 1, published.count())
}

// Racing submissions through the full service path. The pool is pinned to a
// single connection so sqlite serializes the writes without busy errors; the
// interleaving of the registry checks stays up to the scheduler, and under
// every interleaving exactly one submission wins.
func TestConcurrentDuplicateSubmissions(t *testing.T) {
	bus := setupTest(t)
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	published := record(t, bus, events.ReviewCreated)
	session := completedSession(t)
	input := CreateReviewInput{SessionID: session.ID, TutorID: 7, StudentID: 9, Rating: 4}

	start := make(chan struct{})
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := CreateReview(context.Background(), input)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrConflict)
		conflicts++
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, conflicts)

	var count int64
	database.DB.Model(&models.Review{}).Where("session_id = ?", session.ID).Count(&count)
	require.EqualValues(t, 1, count)
	require.Equal(t, 1, published.count())
}

// Two concurrent submissions can both pass the registry check; the unique
// index on session_id is what guarantees only one row lands.
func TestReviewUniquenessHeldByStorage(t *testing.T) {
	setupTest(t)
	session := completedSession(t)

	insert := func() int64 {
		review := models.Review{SessionID: session.ID, TutorID: 7, StudentID: 9, Rating: 4}
		result := database.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(&review)
		require.NoError(t, result.Error)
		return result.RowsAffected
	}

	require.EqualValues(t, 1, insert())
	require.EqualValues(t, 0, insert())

	var count int64
	database.DB.Model(&models.Review{}).Where("session_id = ?", session.ID).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestDeleteReviewRecomputesAggregate(t *testing.T) {
	setupTest(t)
	require.NoError(t, StartRatingAggregator())
	ctx := context.Background()

	require.NoError(t, database.DB.Create(&models.User{
		ID: 7, FullName: "Ada Tutor", Email: "ada@example.com", Password: "x", Role: "tutor",
	}).Error)

	first := completedSession(t)
	second := completedSession(t)

	kept, err := CreateReview(ctx, CreateReviewInput{SessionID: first.ID, TutorID: 7, StudentID: 9, Rating: 5})
	require.NoError(t, err)
	dropped, err := CreateReview(ctx, CreateReviewInput{SessionID: second.ID, TutorID: 7, StudentID: 9, Rating: 3})
	require.NoError(t, err)

	var tutor models.User
	require.NoError(t, database.DB.First(&tutor, "id = ?", 7).Error)
	require.InDelta(t, 4.0, tutor.Rating, 0.001)
	require.Equal(t, 2, tutor.TotalReviews)

	require.NoError(t, DeleteReview(ctx, dropped.ID))

	require.NoError(t, database.DB.First(&tutor, "id = ?", 7).Error)
	require.InDelta(t, 5.0, tutor.Rating, 0.001)
	require.Equal(t, 1, tutor.TotalReviews)

	// The application row for the deleted review is gone too, so a replayed
	// event for it cannot be folded back in.
	var applications int64
	database.DB.Model(&models.RatingApplication{}).
		Where("tutor_id = ? AND review_id = ?", 7, dropped.ID).
		Count(&applications)
	require.Zero(t, applications)

	_, err = GetReview(kept.ID)
	require.NoError(t, err)
}

func TestTutorReviewStats(t *testing.T) {
	setupTest(t)
	ctx := context.Background()

	for _, rating := range []int{5, 3, 4, 5} {
		session := completedSession(t)
		_, err := CreateReview(ctx, CreateReviewInput{
			SessionID: session.ID,
			TutorID:   7,
			StudentID: 9,
			Rating:    rating,
		})
		require.NoError(t, err)
	}

	stats, err := TutorReviewStats(7)
	require.NoError(t, err)
	require.EqualValues(t, 4, stats.TotalReviews)
	require.InDelta(t, 4.25, stats.AverageRating, 0.001)
	require.EqualValues(t, 2, stats.Distribution[5])
	require.EqualValues(t, 1, stats.Distribution[4])
	require.EqualValues(t, 1, stats.Distribution[3])
	require.EqualValues(t, 0, stats.Distribution[2])
	require.Len(t, stats.Recent, 4)

	empty, err := TutorReviewStats(99)
	require.NoError(t, err)
	require.Zero(t, empty.TotalReviews)
	require.Zero(t, empty.AverageRating)
}

func intPtr(v int) *int { return &v }
