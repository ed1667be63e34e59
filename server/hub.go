package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/TFMV/nodefield/metrics"
	"github.com/TFMV/nodefield/models"
)

// client represents a connected SSE client
type client struct {
	id     string
	events chan []byte
}

// Hub fans frames out to Server-Sent-Events clients
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan models.FrameSnapshot
	metrics    *metrics.Metrics
	keepAlive  time.Duration
	done       chan struct{}
}

// NewHub creates a new Hub
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan models.FrameSnapshot, 4),
		metrics:    m,
		keepAlive:  30 * time.Second,
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is canceled.
// A hub runs at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.events)
			}
			h.mu.Unlock()
			h.metrics.SetStreamClients(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetStreamClients(count)
			log.Printf("Stream client connected: %s (total: %d)", c.id, count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.events)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetStreamClients(count)
			log.Printf("Stream client disconnected: %s (total: %d)", c.id, count)

		case frame := <-h.broadcast:
			data, err := json.Marshal(frame)
			if err != nil {
				log.Printf("Failed to marshal frame: %v", err)
				continue
			}

			msg := []byte(fmt.Sprintf("data: %s\n\n", data))

			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.events <- msg:
				default:
					// Client is slow, skip this frame
					h.metrics.FrameDropped()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a frame for all clients without blocking the caller
func (h *Hub) Broadcast(frame models.FrameSnapshot) {
	if h.ClientCount() == 0 {
		return
	}
	select {
	case h.broadcast <- frame:
	default:
		h.metrics.FrameDropped()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	c := &client{
		id:     fmt.Sprintf("%d", time.Now().UnixNano()),
		events: make(chan []byte, 8),
	}

	select {
	case h.register <- c:
	case <-h.done:
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}

	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
