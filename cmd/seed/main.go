// Seeds a verified demo account with one embedded book and the opening
// chat turn, for local frontend development against a fresh database.
package main

import (
	"context"
	"log"
	"time"

	"ai-booktutor-be/internal/config"
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/repository/specification"
	"ai-booktutor-be/internal/repository/unitofwork"
	"ai-booktutor-be/pkg/chat/respond"
	"ai-booktutor-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoEmail    = "demo@booktutor.local"
	demoPassword = "demo-password-123"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: demoEmail})
	if err != nil {
		log.Fatalf("Seed check failed: %v", err)
	}
	if existing != nil {
		color.Yellow("Demo user already exists, nothing to do")
		return
	}

	if err := uow.Begin(ctx); err != nil {
		log.Fatalf("Begin failed: %v", err)
	}
	defer uow.Rollback()

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hash failed: %v", err)
	}
	hashStr := string(hash)
	birthDate := time.Date(1998, time.March, 14, 0, 0, 0, 0, time.UTC)
	job := "computer science student"

	user := &entity.User{
		Id:            uuid.New(),
		Email:         demoEmail,
		PasswordHash:  &hashStr,
		FullName:      "Demo Learner",
		Role:          entity.UserRoleUser,
		Status:        entity.UserStatusActive,
		EmailVerified: true,
		BirthDate:     &birthDate,
		Job:           &job,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		log.Fatalf("Seed user failed: %v", err)
	}

	book := &entity.Book{
		Id:              uuid.New(),
		UserId:          user.Id,
		Title:           "Introduction to Algorithms (sample)",
		FileName:        "intro-algorithms.pdf",
		FilePath:        "uploads/seed/intro-algorithms.pdf",
		FileSize:        1 << 20,
		PageCount:       42,
		EmbeddingStatus: entity.EmbeddingStatusReady,
		ChunkCount:      3,
		CreatedAt:       time.Now(),
	}
	if err := uow.BookRepository().Create(ctx, book); err != nil {
		log.Fatalf("Seed book failed: %v", err)
	}

	chunks := []*entity.BookPageEmbedding{
		seedChunk(book.Id, 0, 1, "Sorting orders a sequence according to a comparison function."),
		seedChunk(book.Id, 1, 2, "Insertion sort runs in quadratic time but is fast on nearly sorted input."),
		seedChunk(book.Id, 2, 3, "Merge sort divides the input, sorts the halves, and merges them."),
	}
	if err := uow.BookEmbeddingRepository().CreateBulk(ctx, chunks); err != nil {
		log.Fatalf("Seed embeddings failed: %v", err)
	}

	opening := respond.ForState(entity.InitialState)
	initial := entity.InitialState
	turn := &entity.ChatTurn{
		Id:          uuid.New(),
		UserId:      user.Id,
		BookId:      book.Id,
		Sender:      entity.SenderAI,
		Content:     opening.Content,
		MessageType: opening.MessageType,
		ChatState:   &initial,
		CreatedAt:   time.Now(),
	}
	if err := uow.ChatTurnRepository().Append(ctx, turn); err != nil {
		log.Fatalf("Seed chat turn failed: %v", err)
	}

	if err := uow.Commit(); err != nil {
		log.Fatalf("Commit failed: %v", err)
	}

	color.Green("Seed complete")
	color.Cyan("  email:    %s", demoEmail)
	color.Cyan("  password: %s", demoPassword)
	color.Cyan("  book:     %s", book.Title)
}

func seedChunk(bookId uuid.UUID, index, page int, text string) *entity.BookPageEmbedding {
	// Deterministic placeholder vector; real values come from the
	// generation backend.
	vec := make([]float32, 768)
	for i := range vec {
		vec[i] = float32((i+index)%7) / 7
	}
	return &entity.BookPageEmbedding{
		Id:             uuid.New(),
		BookId:         bookId,
		ChunkIndex:     index,
		Page:           page,
		Document:       text,
		EmbeddingValue: vec,
		CreatedAt:      time.Now(),
	}
}
