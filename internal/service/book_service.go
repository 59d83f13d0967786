// FILE: internal/service/book_service.go
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/pkg/logger"
	"ai-booktutor-be/internal/pkg/serverutils"
	"ai-booktutor-be/internal/repository/specification"
	"ai-booktutor-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IBookService interface {
	Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadBookRequest) (*dto.UploadBookResponse, error)
	Show(ctx context.Context, userId, id uuid.UUID) (*dto.BookResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.BookResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateBookRequest) (*dto.BookResponse, error)
	Delete(ctx context.Context, userId, id uuid.UUID) error
}

type bookService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	uploadDir        string
	log              logger.ILogger
}

func NewBookService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	uploadDir string,
	log logger.ILogger,
) IBookService {
	return &bookService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		uploadDir:        uploadDir,
		log:              log,
	}
}

// Upload stores the PDF on disk, records the book as pending, and
// schedules embedding on the internal bus. The HTTP response never waits
// for the embedding pipeline.
func (s *bookService) Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadBookRequest) (*dto.UploadBookResponse, error) {
	raw, err := base64.StdEncoding.DecodeString(req.PdfBase64)
	if err != nil {
		return nil, serverutils.NewBadRequestError("pdf_base64 is not valid base64")
	}
	if len(raw) == 0 {
		return nil, serverutils.NewBadRequestError("Uploaded PDF is empty")
	}

	bookId := uuid.New()

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(s.uploadDir, fmt.Sprintf("%s.pdf", bookId))
	if err := os.WriteFile(filePath, raw, 0o644); err != nil {
		return nil, err
	}

	book := &entity.Book{
		Id:              bookId,
		UserId:          userId,
		Title:           req.Title,
		FileName:        req.FileName,
		FilePath:        filePath,
		FileSize:        int64(len(raw)),
		EmbeddingStatus: entity.EmbeddingStatusPending,
		CreatedAt:       time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BookRepository().Create(ctx, book); err != nil {
		// Best effort cleanup of the orphaned file.
		_ = os.Remove(filePath)
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishEmbedBookMessage{BookId: book.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Error("book", "failed to schedule embedding", map[string]interface{}{
			"book_id": book.Id,
			"error":   err.Error(),
		})
	}

	return &dto.UploadBookResponse{
		Id:              book.Id,
		EmbeddingStatus: string(book.EmbeddingStatus),
	}, nil
}

func (s *bookService) Show(ctx context.Context, userId, id uuid.UUID) (*dto.BookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	book, err := uow.BookRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, serverutils.NewNotFoundError("Book not found")
	}
	return bookToDTO(book), nil
}

func (s *bookService) List(ctx context.Context, userId uuid.UUID) ([]*dto.BookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	books, err := uow.BookRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.BookResponse, len(books))
	for i, b := range books {
		out[i] = bookToDTO(b)
	}
	return out, nil
}

func (s *bookService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateBookRequest) (*dto.BookResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	book, err := uow.BookRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, serverutils.NewNotFoundError("Book not found")
	}

	book.Title = req.Title
	now := time.Now()
	book.UpdatedAt = &now

	if err := uow.BookRepository().Update(ctx, book); err != nil {
		return nil, err
	}
	return bookToDTO(book), nil
}

// Delete removes the book row, its local embeddings, its transcript and
// the stored file.
func (s *bookService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	book, err := uow.BookRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if book == nil {
		return serverutils.NewNotFoundError("Book not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.BookEmbeddingRepository().DeleteByBookId(ctx, id); err != nil {
		return err
	}
	if err := uow.ChatTurnRepository().DeleteAllForPair(ctx, userId, id); err != nil {
		return err
	}
	if err := uow.BookRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if err := os.Remove(book.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("book", "failed to remove stored file", map[string]interface{}{
			"book_id": id,
			"path":    book.FilePath,
			"error":   err.Error(),
		})
	}
	return nil
}

func bookToDTO(b *entity.Book) *dto.BookResponse {
	return &dto.BookResponse{
		Id:              b.Id,
		Title:           b.Title,
		FileName:        b.FileName,
		FileSize:        b.FileSize,
		PageCount:       b.PageCount,
		EmbeddingStatus: string(b.EmbeddingStatus),
		ChunkCount:      b.ChunkCount,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
