package routes

import (
	"github.com/LaCagee/tutorConnect/handlers"
	"github.com/LaCagee/tutorConnect/middleware"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/register", handlers.RegisterUser)
	api.Post("/login", handlers.LoginUser)
	api.Get("/tutors", handlers.ListTutors)
	api.Get("/users/:id", handlers.GetUser)

	api.Put("/users/:id", middleware.Protected(), handlers.UpdateUser)
}
