package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/accrandomash-cloud/Tiktokkk/internal/progress"
)

// ProgressHandler relays pipeline step notices over WebSocket
type ProgressHandler struct {
	notifier *progress.Notifier
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(notifier *progress.Notifier) *ProgressHandler {
	return &ProgressHandler{notifier: notifier}
}

// Handle subscribes the connection to step notices until it closes
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	events := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(events)

	log.Printf("Progress WebSocket connected: %s", c.RemoteAddr())

	// Reads only detect the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
