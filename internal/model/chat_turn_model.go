package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_turns_pair"`
	BookId      uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_turns_pair"`
	Sender      string    `gorm:"type:varchar(10);not null"`
	Content     string    `gorm:"type:text"`
	MessageType string    `gorm:"type:varchar(20);not null;default:'TEXT'"`
	ChatState   *string   `gorm:"type:varchar(60)"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
