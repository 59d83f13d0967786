package contract

import (
	"context"

	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChatTurnRepository is the append-only transcript store. Turns are
// never updated; the only destructive operation is the per-pair wipe.
type ChatTurnRepository interface {
	Append(ctx context.Context, turn *entity.ChatTurn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteAllForPair(ctx context.Context, userId, bookId uuid.UUID) error
}
