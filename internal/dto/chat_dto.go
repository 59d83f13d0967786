package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendTurnRequest struct {
	BookId      uuid.UUID `json:"book_id" validate:"required"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type" validate:"omitempty,oneof=TEXT SELECTION RATING"`
	// Optional override; when absent the state is resolved from history.
	ChatState string `json:"chat_state" validate:"omitempty"`
}

type TurnResponse struct {
	Id          uuid.UUID `json:"id"`
	UserId      uuid.UUID `json:"user_id"`
	BookId      uuid.UUID `json:"book_id"`
	Sender      string    `json:"sender"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	ChatState   string    `json:"chat_state"`
	CreatedAt   time.Time `json:"created_at"`
}

// SendTurnResponse carries the one or two AI turns produced for a single
// user message.
type SendTurnResponse struct {
	Turns []TurnResponse `json:"turns"`
}

type ChatHistoryResponse struct {
	BookId uuid.UUID      `json:"book_id"`
	Turns  []TurnResponse `json:"turns"`
}

type ChatPingResponse struct {
	GenerationBackendAlive bool `json:"generation_backend_alive"`
}
