package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/api/response"
)

const keepAliveInterval = 25 * time.Second

// Subscriber streams serialized events
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan json.RawMessage, error)
}

// EventsHandler serves events as Server-Sent Events
type EventsHandler struct {
	subscriber Subscriber
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber Subscriber) *EventsHandler {
	return &EventsHandler{subscriber: subscriber}
}

// Stream writes every event until the client goes away
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "streaming unsupported")
		return
	}

	events, err := h.subscriber.Subscribe(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to events")
		response.InternalError(w, "failed to subscribe to events")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case payload, ok := <-events:
			if !ok {
				return
			}
			var head struct {
				Type string `json:"type"`
			}
			_ = json.Unmarshal(payload, &head)

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", head.Type, payload); err != nil {
				log.Debug().Err(err).Msg("event stream closed")
				return
			}
			flusher.Flush()
		}
	}
}
