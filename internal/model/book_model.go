package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Book struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"type:varchar(255);not null"`
	FileName        string    `gorm:"type:varchar(255);not null"`
	FilePath        string    `gorm:"type:text;not null"`
	FileSize        int64     `gorm:"not null;default:0"`
	PageCount       int       `gorm:"default:0"`
	EmbeddingStatus string    `gorm:"type:varchar(20);not null;default:'pending'"`
	ChunkCount      int       `gorm:"default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       *time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Book) TableName() string {
	return "books"
}

type BookPageEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookId         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkIndex     int             `gorm:"not null"`
	Page           int             `gorm:"default:0"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (BookPageEmbedding) TableName() string {
	return "book_page_embeddings"
}
