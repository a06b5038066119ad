package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"statcalc/domain/calculation"

	"github.com/gin-gonic/gin"
)

// allTopic subscribes to calculations on every dataset and on inline data
const allTopic = ""

// SSEClient represents a connected SSE client
type SSEClient struct {
	Topic   string
	Channel chan CalculationEvent
}

// CalculationEvent is the payload streamed for each finished calculation
type CalculationEvent struct {
	ID         string              `json:"id"`
	DatasetID  string              `json:"dataset_id,omitempty"`
	Kind       calculation.Kind    `json:"kind"`
	Result     *calculation.Result `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
	DurationMS float64             `json:"duration_ms"`
	Timestamp  time.Time           `json:"timestamp"`
}

// SSEHub fans finished calculations out to Server-Sent Events clients
type SSEHub struct {
	clients    map[string]map[chan CalculationEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan CalculationEvent
	done       chan struct{}
	ping       time.Duration
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan CalculationEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan CalculationEvent, 100),
		done:       make(chan struct{}),
		ping:       30 * time.Second,
	}

	go hub.run()
	return hub
}

// Close stops the hub loop
func (h *SSEHub) Close() {
	close(h.done)
}

func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[chan CalculationEvent]bool)
			}
			h.clients[client.Topic][client.Channel] = true
			log.Printf("[SSE] Client registered for topic %q (total clients: %d)",
				client.Topic, len(h.clients[client.Topic]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.Topic]; exists {
				delete(clients, client.Channel)
				close(client.Channel)
				if len(clients) == 0 {
					delete(h.clients, client.Topic)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			h.deliver(allTopic, event)
			if event.DatasetID != "" {
				h.deliver(event.DatasetID, event)
			}
			h.clientsMu.RUnlock()
		}
	}
}

// deliver must be called with clientsMu held
func (h *SSEHub) deliver(topic string, event CalculationEvent) {
	for clientChan := range h.clients[topic] {
		select {
		case clientChan <- event:
		default:
			log.Printf("[SSE] Client channel full for topic %q, skipping event %s", topic, event.ID)
		}
	}
}

// Publish implements ports.CalculationPublisher and never blocks
func (h *SSEHub) Publish(rec calculation.Record) {
	event := CalculationEvent{
		ID:         rec.ID.String(),
		DatasetID:  rec.DatasetID.String(),
		Kind:       rec.Kind,
		Result:     rec.Result,
		Error:      rec.Error,
		DurationMS: float64(rec.Duration.Microseconds()) / 1000,
		Timestamp:  rec.CreatedAt,
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event %s", event.ID)
	}
}

// HandleSSE streams calculation events; ?dataset_id= narrows the stream to one dataset
func (h *SSEHub) HandleSSE(c *gin.Context) {
	topic := c.Query("dataset_id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan CalculationEvent, 10)

	client := SSEClient{Topic: topic, Channel: clientChan}
	select {
	case <-h.done:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is closed", "code": "UNAVAILABLE"})
		return
	default:
	}
	select {
	case h.register <- client:
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is busy", "code": "UNAVAILABLE"})
		return
	}
	defer h.leave(client)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("calculation", string(eventJSON))
			return true

		case <-time.After(h.ping):
			c.SSEvent("ping", `{"timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false

		case <-h.done:
			return false
		}
	})
}

// leave unregisters a client; once the hub is closed nothing drains unregister, so it gives up
func (h *SSEHub) leave(client SSEClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// GetClientCount returns the number of active clients for a topic
func (h *SSEHub) GetClientCount(topic string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	return len(h.clients[topic])
}
