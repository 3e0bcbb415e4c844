package handlers

import (
	"errors"
	"strconv"

	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/services"
	"github.com/gofiber/fiber/v2"
)

func CreateReview(c *fiber.Ctx) error {
	var req services.CreateReviewInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	review, err := services.CreateReview(c.Context(), req)
	if errors.Is(err, events.ErrTransport) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":       "Review created, but rating propagation is delayed",
			"review":        review,
			"event_pending": true,
		})
	}
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review created successfully",
		"review":  review,
	})
}

func ListReviews(c *fiber.Ctx) error {
	tutorID, _ := strconv.ParseUint(c.Query("tutorId"), 10, 64)
	studentID, _ := strconv.ParseUint(c.Query("studentId"), 10, 64)
	sessionID, _ := strconv.ParseUint(c.Query("sessionId"), 10, 64)

	reviews, err := services.ListReviews(services.ReviewFilter{
		TutorID:   uint(tutorID),
		StudentID: uint(studentID),
		SessionID: uint(sessionID),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(reviews)
}

func GetReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review id"})
	}

	review, err := services.GetReview(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(review)
}

func GetTutorReviewStats(c *fiber.Ctx) error {
	tutorID, err := paramID(c, "tutorId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	stats, err := services.TutorReviewStats(tutorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

func CanReviewSession(c *fiber.Ctx) error {
	sessionID, err := paramID(c, "sessionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	eligible, reason := services.Gate.CanReview(sessionID)
	return c.JSON(fiber.Map{
		"canReview": eligible,
		"reason":    reason,
	})
}

func DeleteReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review id"})
	}

	if err := services.DeleteReview(c.Context(), id); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Review deleted and tutor rating recomputed"})
}
