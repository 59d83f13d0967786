// FILE: internal/entity/question_record_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// QuestionRecord holds the most recently generated question for a
// (user, book) pair. Created when the backend generates a question,
// updated once when the user's answer arrives.
type QuestionRecord struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	BookId        uuid.UUID
	Domain        string
	Concept       string
	ProblemText   string
	CorrectAnswer string
	UserAnswer    *string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
