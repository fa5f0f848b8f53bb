package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/sdr-power-queue/app/services"
	"github.com/gofiber/fiber/v3"
)

// keepAliveInterval is how often an idle stream sends a comment line; a failed write ends the stream
const keepAliveInterval = 15 * time.Second

// EventsHandler streams the operator's notifications as server-sent events
type EventsHandler struct {
	baseHandler
	notifier services.NotificationService
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(notifier services.NotificationService) *EventsHandler {
	return &EventsHandler{
		baseHandler: newBaseHandler(),
		notifier:    notifier,
	}
}

// writeEvent writes one SSE frame
func writeEvent(w *bufio.Writer, n services.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Event, data); err != nil {
		return err
	}
	return w.Flush()
}

// Stream
// @Summary Operator Events
// @Description Server-sent events: toast notifications, queue.refresh and block.tick. EventSource clients may pass the token as access_token.
// @Tags Events
// @Produce text/event-stream
// @Security BearerAuth
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Router /api/v1/events [get]
func (h *EventsHandler) Stream(c fiber.Ctx) error {
	scope, ok := h.scope(c)
	if !ok {
		return nil
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.notifier.Subscribe(scope)
	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		hello := services.Notification{Event: "ready", Kind: services.KindInfo, At: time.Now().UTC()}
		if err := writeEvent(w, hello); err != nil {
			return
		}
		for {
			select {
			case n, open := <-events:
				if !open {
					return
				}
				if err := writeEvent(w, n); err != nil {
					log.Printf("events: stream for scope %s closed: %v", scope, err)
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}
