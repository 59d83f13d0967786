package implementation

import (
	"context"

	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/mapper"
	"ai-booktutor-be/internal/model"
	"ai-booktutor-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookMapper
}

func NewBookEmbeddingRepository(db *gorm.DB) contract.BookEmbeddingRepository {
	return &BookEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookMapper(),
	}
}

func (r *BookEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.BookPageEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.BookPageEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.EmbeddingToModel(e)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *BookEmbeddingRepositoryImpl) DeleteByBookId(ctx context.Context, bookId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("book_id = ?", bookId).Delete(&model.BookPageEmbedding{}).Error
}

func (r *BookEmbeddingRepositoryImpl) CountByBookId(ctx context.Context, bookId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BookPageEmbedding{}).
		Where("book_id = ?", bookId).Count(&count).Error
	return count, err
}
