package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
)

// Hub fans task events out to every live connection of the owning user.
// Users never receive each other's events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	closed  bool
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = logger.Get()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log,
	}
}

// Register adds c to its user's set. It reports false once the hub is shut down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.log.Debug("events client registered", "user_id", c.UserID, "connections", len(set))
	return true
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Publish implements service.EventPublisher. It never blocks: a client whose
// buffer is full is dropped.
func (h *Hub) Publish(userID string, ev domain.TaskEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode task event", "error", err, "type", ev.Type)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		h.log.Warn("dropping slow events client", "user_id", userID)
		h.removeLocked(c)
	}
	h.mu.Unlock()
}

// Connections returns the number of live connections for userID
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Run blocks until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
	h.log.Info("events hub stopped")
	return nil
}
