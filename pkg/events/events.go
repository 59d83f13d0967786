package events

import "time"

// Event is the contract every system event satisfies.
type Event interface {
	// EventType returns the unique code for this event (e.g. "USER_LOGIN").
	EventType() string

	// Payload returns the data carried by the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation suitable for most publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewUserLoginEvent records a successful login.
func NewUserLoginEvent(userId, email string) Event {
	return BaseEvent{
		Type: "USER_LOGIN",
		Data: map[string]interface{}{
			"user_id": userId,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

// NewBookEmbeddedEvent records that a book's page embeddings are ready.
func NewBookEmbeddedEvent(userId, bookId string, chunks int) Event {
	return BaseEvent{
		Type: "BOOK_EMBEDDED",
		Data: map[string]interface{}{
			"user_id": userId,
			"book_id": bookId,
			"chunks":  chunks,
		},
		OccurredAt: time.Now(),
	}
}
