package mapper

import (
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type BookMapper struct{}

func NewBookMapper() *BookMapper {
	return &BookMapper{}
}

func (m *BookMapper) ToModel(b *entity.Book) *model.Book {
	if b == nil {
		return nil
	}
	return &model.Book{
		Id:              b.Id,
		UserId:          b.UserId,
		Title:           b.Title,
		FileName:        b.FileName,
		FilePath:        b.FilePath,
		FileSize:        b.FileSize,
		PageCount:       b.PageCount,
		EmbeddingStatus: string(b.EmbeddingStatus),
		ChunkCount:      b.ChunkCount,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (m *BookMapper) ToEntity(b *model.Book) *entity.Book {
	if b == nil {
		return nil
	}
	return &entity.Book{
		Id:              b.Id,
		UserId:          b.UserId,
		Title:           b.Title,
		FileName:        b.FileName,
		FilePath:        b.FilePath,
		FileSize:        b.FileSize,
		PageCount:       b.PageCount,
		EmbeddingStatus: entity.EmbeddingStatus(b.EmbeddingStatus),
		ChunkCount:      b.ChunkCount,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (m *BookMapper) ToEntities(books []*model.Book) []*entity.Book {
	entities := make([]*entity.Book, len(books))
	for i, b := range books {
		entities[i] = m.ToEntity(b)
	}
	return entities
}

func (m *BookMapper) EmbeddingToModel(e *entity.BookPageEmbedding) *model.BookPageEmbedding {
	if e == nil {
		return nil
	}
	return &model.BookPageEmbedding{
		Id:             e.Id,
		BookId:         e.BookId,
		ChunkIndex:     e.ChunkIndex,
		Page:           e.Page,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *BookMapper) EmbeddingToEntity(e *model.BookPageEmbedding) *entity.BookPageEmbedding {
	if e == nil {
		return nil
	}
	return &entity.BookPageEmbedding{
		Id:             e.Id,
		BookId:         e.BookId,
		ChunkIndex:     e.ChunkIndex,
		Page:           e.Page,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
	}
}
