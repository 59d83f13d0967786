package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestionRecord struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index:idx_question_records_pair"`
	BookId        uuid.UUID `gorm:"type:uuid;not null;index:idx_question_records_pair"`
	Domain        string    `gorm:"type:varchar(255)"`
	Concept       string    `gorm:"type:varchar(255)"`
	ProblemText   string    `gorm:"type:text"`
	CorrectAnswer string    `gorm:"type:text"`
	UserAnswer    *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt     *time.Time
}

func (QuestionRecord) TableName() string {
	return "question_records"
}
