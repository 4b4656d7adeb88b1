package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AvailabilityEvent is the payload broadcast whenever a doctor's
// availability changes.
type AvailabilityEvent struct {
	Type         string                    `json:"type"`
	Availability doctormodels.Availability `json:"availability"`
}

// BroadcastAvailability pushes an availability change to every connected
// client.
func BroadcastAvailability(hub *Hub, snapshot doctormodels.Availability) {
	payload, err := json.Marshal(AvailabilityEvent{
		Type:         "availability_changed",
		Availability: snapshot,
	})
	if err != nil {
		return
	}
	hub.Broadcast <- payload
}

// ServeWS upgrades the connection and attaches it to the hub.
func ServeWS(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		client := &Client{Conn: conn, Send: make(chan []byte, 256)}
		hub.Register <- client

		go client.writePump()
		go client.readPump(hub)
		return nil
	}
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.Unregister <- c
		c.Conn.Close()
	}()
	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		// The feed is one-way; client messages are ignored.
	}
}

func (c *Client) writePump() {
	for message := range c.Send {
		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
	c.Conn.Close()
}
