package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const relayChannel = "chat_turn_events"

// Hub fans freshly produced AI turns out to the user's connected
// devices. With Redis configured, turns are also relayed to sibling
// instances so a user connected elsewhere still receives them.
type Hub struct {
	// UserID -> connections (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRelay()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("hub", "client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyTurns implements the turn push used by the chat service.
func (h *Hub) NotifyTurns(userId uuid.UUID, turns []dto.TurnResponse) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "chat_turns",
		"data": turns,
	})
	if err != nil {
		return
	}

	h.deliverLocal(userId, data)

	// Relay so instances holding this user's other connections deliver too.
	if h.rdb != nil {
		payload, _ := json.Marshal(relayEnvelope{
			TargetUserID: userId.String(),
			Message:      data,
		})
		h.rdb.Publish(context.Background(), relayChannel, payload)
	}
}

type relayEnvelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func (h *Hub) deliverLocal(userId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[userId]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("hub", "client send buffer full, dropping connection", map[string]interface{}{"user_id": userId})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRelay() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope relayEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("hub", "bad relay payload", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := uuid.Parse(envelope.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, envelope.Message)
	}
}
