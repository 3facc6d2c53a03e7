package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Hub distribui eventos para os clientes WebSocket inscritos em cada câmera.
// Também implementa camera.Display, então o broker publica frames e mudanças
// de estado direto aqui.
type Hub struct {
	clients    map[*Client]bool
	cameras    map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		cameras:    make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastToCamera(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.cameras[client.cameraID] == nil {
		h.cameras[client.cameraID] = make(map[*Client]bool)
	}
	h.cameras[client.cameraID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.cameras[client.cameraID], client)

		if len(h.cameras[client.cameraID]) == 0 {
			delete(h.cameras, client.cameraID)
		}

		close(client.send)
	}
}

func (h *Hub) broadcastToCamera(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.cameras[event.CameraID]
	if clients == nil {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(h.cameras[event.CameraID], client)
		}
	}
}

// BroadcastToCamera enfileira um evento para os inscritos de uma câmera.
// Descarta o evento se a fila do hub estiver cheia, um frame perdido é
// preferível a travar o loop de captura.
func (h *Hub) BroadcastToCamera(cameraID string, eventType EventType, data interface{}) {
	event := Event{
		CameraID:  cameraID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) GetConnectedClients(cameraID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.cameras[cameraID])
}
