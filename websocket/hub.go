package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Notification is an in-app push mirroring what the email templates say,
// delivered to the affected user if they are connected.
type Notification struct {
	UserID uint   `json:"-"`
	Event  string `json:"event"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type Client struct {
	UserID uint
	Conn   *websocket.Conn
}

var clients = make(map[uint]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Push = make(chan Notification, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %d", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %d", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case notification := <-Push:
			clientsMu.RLock()
			conn, ok := clients[notification.UserID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(notification); err != nil {
				log.Printf("Error pushing notification to user %d: %v", notification.UserID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, notification.UserID)
				clientsMu.Unlock()
			}
		}
	}
}

// Notify queues a push without blocking the event consumer that produced it.
func Notify(userID uint, event, title, body string) {
	select {
	case Push <- Notification{UserID: userID, Event: event, Title: title, Body: body}:
	default:
		log.Printf("⚠️ Notification queue full, dropping push for user %d", userID)
	}
}
