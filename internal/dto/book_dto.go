package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadBookRequest struct {
	Title     string `json:"title" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	PdfBase64 string `json:"pdf_base64" validate:"required"`
}

type UploadBookResponse struct {
	Id              uuid.UUID `json:"id"`
	EmbeddingStatus string    `json:"embedding_status"`
}

type BookResponse struct {
	Id              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	FileName        string     `json:"file_name"`
	FileSize        int64      `json:"file_size"`
	PageCount       int        `json:"page_count"`
	EmbeddingStatus string     `json:"embedding_status"`
	ChunkCount      int        `json:"chunk_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

type UpdateBookRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required"`
}

// PublishEmbedBookMessage is the internal bus payload that schedules a
// book for embedding.
type PublishEmbedBookMessage struct {
	BookId uuid.UUID `json:"book_id"`
}
