package contract

import (
	"context"

	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QuestionRecordRepository interface {
	Create(ctx context.Context, record *entity.QuestionRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuestionRecord, error)
	// UpdateUserAnswer writes the submitted answer onto an existing record.
	UpdateUserAnswer(ctx context.Context, id uuid.UUID, answer string) error
}
