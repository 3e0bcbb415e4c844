package main

import (
	"log"

	config "github.com/LaCagee/tutorConnect/configs"
	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/LaCagee/tutorConnect/routes"
	"github.com/LaCagee/tutorConnect/server"
	"github.com/gofiber/fiber/v2"
)

func main() {
	database.ConnectDB()
	database.Migrate(&models.Session{})

	bus, err := events.ConnectAMQP(config.Config("RABBITMQ_URL"))
	if err != nil {
		log.Fatalf("🔥 Failed to connect to RabbitMQ: %v", err)
	}
	defer bus.Close()
	events.Use(bus)

	app := server.New("Tutoring Service")
	routes.SessionRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "tutoring-service"})
	})

	port := config.ConfigDefault("TUTORING_PORT", "3002")
	log.Printf("✅ Tutoring Service is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
