package websocket

import (
	"sync"

	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/metrics"
	"github.com/dom/tour-of-heroes/internal/search"
	"go.uber.org/zap"
)

// Hub tracks live-search sessions so they can be shut down together.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	pipeline   *search.Pipeline
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewHub(pipeline *search.Pipeline, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		pipeline:   pipeline,
		logger:     logging.OrNop(logger),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
				metrics.SearchSessionClosed()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			metrics.SearchSessionOpened()
			h.logger.Debug("search session opened", zap.String("session", client.id.String()))
			go client.runSearch(h.pipeline)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				metrics.SearchSessionClosed()
				h.logger.Debug("search session closed", zap.String("session", client.id.String()))
			}
			h.mu.Unlock()
			client.Close()
		}
	}
}

// Register hands a session to the hub. A stopped hub closes it instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// Stop gracefully shuts down the hub and all its sessions.
// It blocks until Run has exited.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
