package unitofwork

import (
	"context"

	"ai-booktutor-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	BookRepository() contract.BookRepository
	BookEmbeddingRepository() contract.BookEmbeddingRepository
	ChatTurnRepository() contract.ChatTurnRepository
	QuestionRecordRepository() contract.QuestionRecordRepository
}
