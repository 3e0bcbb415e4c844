package handlers

import (
	"errors"
	"strconv"

	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func userIDFromToken(c *fiber.Ctx) uint {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := claims["user_id"].(float64)
	return uint(id)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrNotEligible):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func CreateSession(c *fiber.Ctx) error {
	var req services.CreateSessionInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	session, err := services.CreateSession(c.Context(), req)
	if errors.Is(err, events.ErrTransport) {
		// The session is durably created; only the announcement is pending.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":       "Session created, but downstream notification is delayed",
			"session":       session,
			"event_pending": true,
		})
	}
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Tutoring session created successfully",
		"session": session,
	})
}

func ListSessions(c *fiber.Ctx) error {
	tutorID, _ := strconv.ParseUint(c.Query("tutorId"), 10, 64)
	studentID, _ := strconv.ParseUint(c.Query("studentId"), 10, 64)

	sessions, err := services.ListSessions(services.SessionFilter{
		TutorID:   uint(tutorID),
		StudentID: uint(studentID),
		Status:    c.Query("status"),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(sessions)
}

func GetSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := services.GetSession(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(session)
}

func ConfirmSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := services.GetSession(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if session.TutorID != userIDFromToken(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the tutor for this session"})
	}

	session, err = services.ConfirmSession(c.Context(), id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Session confirmed", "session": session})
}

func CompleteSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := services.GetSession(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if session.TutorID != userIDFromToken(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the tutor for this session"})
	}

	session, err = services.CompleteSession(c.Context(), id)
	if errors.Is(err, events.ErrTransport) {
		return c.JSON(fiber.Map{
			"message":       "Session completed, but downstream notification is delayed",
			"session":       session,
			"event_pending": true,
		})
	}
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Session completed", "session": session})
}

func CancelSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := services.GetSession(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	// Either party may cancel while the session is not completed.
	userID := userIDFromToken(c)
	if session.TutorID != userID && session.StudentID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your session"})
	}

	session, err = services.CancelSession(c.Context(), id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Session cancelled", "session": session})
}

func DeleteSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if err := services.DeleteSession(id); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Session deleted"})
}
