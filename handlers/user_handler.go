package handlers

import (
	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/gofiber/fiber/v2"
)

func GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}

func ListTutors(c *fiber.Ctx) error {
	query := database.DB.Where("role = ?", "tutor").Order("rating desc")
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subjects LIKE ?", "%"+subject+"%")
	}

	var tutors []models.User
	if err := query.Find(&tutors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(tutors)
}

type UpdateProfileRequest struct {
	FullName     string   `json:"full_name"`
	Subjects     *string  `json:"subjects"`
	PricePerHour *float64 `json:"price_per_hour" validate:"omitempty,gte=0"`
	Bio          *string  `json:"bio"`
}

func UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	if id != userIDFromToken(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only update your own profile"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Subjects != nil {
		user.Subjects = *req.Subjects
	}
	if req.PricePerHour != nil {
		user.PricePerHour = *req.PricePerHour
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"message": "Profile updated", "user": user})
}
