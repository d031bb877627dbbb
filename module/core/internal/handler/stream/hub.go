package stream

import (
	"encoding/json"
	"log"
	"sync"
)

const (
	ChannelPositions = "positions"
	ChannelGeofences = "geofences"
	ChannelProgress  = "progress"
	ChannelErrors    = "errors"
)

func ValidChannel(name string) bool {
	switch name {
	case ChannelPositions, ChannelGeofences, ChannelProgress, ChannelErrors:
		return true
	}
	return false
}

// Hub fans live trip updates out to websocket clients grouped by channel.
// Slow clients drop messages instead of blocking the producer.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Channel string
	Send    chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: map[string]map[*Client]struct{}{}}
}

func (h *Hub) Register(channel string) *Client {
	client := &Client{
		Channel: channel,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[channel] == nil {
		h.clients[channel] = map[*Client]struct{}{}
	}
	h.clients[channel][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channelClients, ok := h.clients[client.Channel]
	if !ok {
		return
	}
	if _, ok := channelClients[client]; !ok {
		return
	}
	delete(channelClients, client)
	if len(channelClients) == 0 {
		delete(h.clients, client.Channel)
	}
	close(client.Send)
}

func (h *Hub) ClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

// Broadcast holds the read lock while sending so Unregister cannot close a
// Send channel underneath it.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[channel] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) BroadcastJSON(channel string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("stream: marshal %s message: %v", channel, err)
		return
	}
	h.Broadcast(channel, payload)
}
