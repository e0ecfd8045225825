package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"MarketChat/internal/lib/sl"
	"MarketChat/internal/metrics"
)

// ErrHubBusy is returned when the delivery queue is full.
var ErrHubBusy = errors.New("websocket hub delivery queue is full")

type delivery struct {
	channel string
	data    []byte
}

// Hub keeps the connected clients of this instance grouped by party channel.
type Hub struct {
	channels   map[string]map[*Client]bool
	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		channels:   make(map[string]map[*Client]bool),
		deliver:    make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run starts the hub's event loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.channels[client.channel] == nil {
				h.channels[client.channel] = make(map[*Client]bool)
			}
			h.channels[client.channel][client] = true
			h.mu.Unlock()
			metrics.WebsocketClients.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case d := <-h.deliver:
			h.mu.Lock()
			for client := range h.channels[d.channel] {
				select {
				case client.send <- d.data:
				default:
					// slow consumer, it will resync on reconnect
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register subscribes client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.channels[client.channel]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.channels, client.channel)
	}
	metrics.WebsocketClients.Dec()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.channels {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Publish queues payload for every local subscriber of channel. A channel
// without subscribers is not an error.
func (h *Hub) Publish(_ context.Context, channel string, payload []byte) error {
	if h.Subscribers(channel) == 0 {
		return nil
	}
	select {
	case h.deliver <- delivery{channel: channel, data: payload}:
		return nil
	default:
		return ErrHubBusy
	}
}

// Subscribers returns the number of local clients listening on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
