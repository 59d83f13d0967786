// FILE: internal/entity/book_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type EmbeddingStatus string

const (
	EmbeddingStatusPending EmbeddingStatus = "pending"
	EmbeddingStatusReady   EmbeddingStatus = "ready"
	EmbeddingStatusFailed  EmbeddingStatus = "failed"
)

// Book is an uploaded PDF document owned by a user. The stored file
// lives on disk under FilePath; indexing into the generation backend
// happens asynchronously and is tracked by EmbeddingStatus.
type Book struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Title           string
	FileName        string
	FilePath        string
	FileSize        int64
	PageCount       int
	EmbeddingStatus EmbeddingStatus
	ChunkCount      int
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// BookPageEmbedding is one indexed chunk of a book as reported back by
// the generation backend, kept locally for inspection queries.
type BookPageEmbedding struct {
	Id             uuid.UUID
	BookId         uuid.UUID
	ChunkIndex     int
	Page           int
	Document       string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
