package routes

import (
	"github.com/LaCagee/tutorConnect/handlers"
	"github.com/LaCagee/tutorConnect/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReviewRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	reviews := api.Group("/reviews")
	reviews.Get("", handlers.ListReviews)
	reviews.Get("/tutor/:tutorId/stats", handlers.GetTutorReviewStats)
	reviews.Get("/session/:sessionId/can-review", handlers.CanReviewSession)
	reviews.Get("/:id", handlers.GetReview)

	protected := reviews.Group("", middleware.Protected())
	protected.Post("", handlers.CreateReview)
	protected.Delete("/:id", handlers.DeleteReview)
}
