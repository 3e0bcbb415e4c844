package main

import (
	"log"

	config "github.com/LaCagee/tutorConnect/configs"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/handlers"
	"github.com/LaCagee/tutorConnect/notifications"
	"github.com/LaCagee/tutorConnect/server"
	"github.com/LaCagee/tutorConnect/services"
	socket "github.com/LaCagee/tutorConnect/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func main() {
	notifications.InitEmailService()

	bus, err := events.ConnectAMQP(config.Config("RABBITMQ_URL"))
	if err != nil {
		log.Fatalf("🔥 Failed to connect to RabbitMQ: %v", err)
	}
	defer bus.Close()
	events.Use(bus)

	directory := services.NewUserDirectory(config.ConfigDefault("USER_SERVICE_URL", "http://localhost:3001"))
	if err := notifications.StartConsumers(directory); err != nil {
		log.Fatalf("🔥 Failed to subscribe notification consumers: %v", err)
	}

	go socket.RunHub()

	app := server.New("Notification Service")

	api := app.Group("/api/v1")
	api.Post("/send-email", handlers.SendManualEmail)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocketcontrib.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocketcontrib.New(handlers.ServeWs))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "notification-service"})
	})

	port := config.ConfigDefault("NOTIFICATION_PORT", "3004")
	log.Printf("✅ Notification Service is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
