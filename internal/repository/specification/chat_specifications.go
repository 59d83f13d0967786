package specification

import (
	"ai-booktutor-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByBook filters turns and question records by book
type ByBook struct {
	BookID uuid.UUID
}

func (s ByBook) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("book_id = ?", s.BookID)
}

// BySender filters turns by sender side
type BySender struct {
	Sender entity.Sender
}

func (s BySender) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender = ?", string(s.Sender))
}

// ByChatState filters turns by the state they were produced in
type ByChatState struct {
	State entity.ChatState
}

func (s ByChatState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_state = ?", string(s.State))
}
