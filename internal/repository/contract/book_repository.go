package contract

import (
	"context"

	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/repository/specification"

	"github.com/google/uuid"
)

type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Book, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Book, error)
	UpdateEmbeddingStatus(ctx context.Context, id uuid.UUID, status entity.EmbeddingStatus, chunkCount int) error
}

type BookEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.BookPageEmbedding) error
	DeleteByBookId(ctx context.Context, bookId uuid.UUID) error
	CountByBookId(ctx context.Context, bookId uuid.UUID) (int64, error)
}
