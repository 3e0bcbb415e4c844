package main

import (
	"log"

	config "github.com/LaCagee/tutorConnect/configs"
	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/jobs"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/LaCagee/tutorConnect/routes"
	"github.com/LaCagee/tutorConnect/server"
	"github.com/LaCagee/tutorConnect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate(&models.Review{})

	bus, err := events.ConnectAMQP(config.Config("RABBITMQ_URL"))
	if err != nil {
		log.Fatalf("🔥 Failed to connect to RabbitMQ: %v", err)
	}
	defer bus.Close()
	events.Use(bus)

	// Warm the gate before accepting traffic, then keep listening for
	// completions and reconciling periodically.
	if err := services.Gate.Rebuild(); err != nil {
		log.Fatalf("🔥 Failed to rebuild reviewable registry: %v", err)
	}
	if err := services.Gate.Start(); err != nil {
		log.Fatalf("🔥 Failed to subscribe to %s: %v", events.SessionCompleted, err)
	}

	c := cron.New()
	c.AddFunc("*/5 * * * *", jobs.ReconcileReviewableRegistry)
	c.AddFunc("@daily", jobs.RemindPendingReviews)
	c.Start()
	log.Println("✅ Cron jobs for registry reconciliation scheduled successfully.")

	app := server.New("Review Service")
	routes.ReviewRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "review-service"})
	})

	port := config.ConfigDefault("REVIEW_PORT", "3003")
	log.Printf("✅ Review Service is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
