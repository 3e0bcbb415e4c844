package routes

import (
	"github.com/LaCagee/tutorConnect/handlers"
	"github.com/LaCagee/tutorConnect/middleware"
	"github.com/gofiber/fiber/v2"
)

func SessionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	sessions := api.Group("/sessions")
	sessions.Get("", handlers.ListSessions)
	sessions.Get("/:id", handlers.GetSession)

	protected := sessions.Group("", middleware.Protected())
	protected.Post("", handlers.CreateSession)
	protected.Put("/:id/cancel", handlers.CancelSession)
	protected.Delete("/:id", handlers.DeleteSession)

	tutorOnly := sessions.Group("", middleware.Protected(), middleware.TutorRequired())
	tutorOnly.Put("/:id/confirm", handlers.ConfirmSession)
	tutorOnly.Put("/:id/complete", handlers.CompleteSession)
}
