package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/pkg/generation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *fakeStore) bookState(id uuid.UUID) (entity.EmbeddingStatus, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.Id == id {
			return b.EmbeddingStatus, b.ChunkCount
		}
	}
	return "", 0
}

func (s *fakeStore) embeddingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.embeddings)
}

func seedPendingBook(t *testing.T, store *fakeStore) *entity.Book {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 sample"), 0o644))

	book := &entity.Book{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		Title:           "Sample",
		FileName:        "book.pdf",
		FilePath:        path,
		EmbeddingStatus: entity.EmbeddingStatusPending,
		CreatedAt:       time.Now(),
	}
	store.books = append(store.books, book)
	return book
}

func startConsumer(t *testing.T, store *fakeStore, backendURL string) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	svc := NewConsumerService(
		pubSub,
		"embed-book-test",
		&fakeFactory{store: store},
		generation.NewClient(backendURL, 2*time.Second),
		nil,
		nopLogger{},
	)
	require.NoError(t, svc.Consume(context.Background()))
	return pubSub
}

func publishEmbed(t *testing.T, pubSub *gochannel.GoChannel, bookId uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(dto.PublishEmbedBookMessage{BookId: bookId})
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish("embed-book-test", message.NewMessage(watermill.NewUUID(), payload)))
}

func TestConsumerMarksBookReadyWithBackendChunkCount(t *testing.T) {
	var got generation.PdfUploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pdf-upload", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generation.PdfUploadResponse{Success: true, ChunksCreated: 3})
	}))
	defer srv.Close()

	store := &fakeStore{}
	book := seedPendingBook(t, store)
	pubSub := startConsumer(t, store, srv.URL)

	publishEmbed(t, pubSub, book.Id)

	require.Eventually(t, func() bool {
		status, _ := store.bookState(book.Id)
		return status == entity.EmbeddingStatusReady
	}, 2*time.Second, 10*time.Millisecond)

	_, chunks := store.bookState(book.Id)
	assert.Equal(t, 3, chunks)
	assert.Equal(t, book.Id.String(), got.BookId)
	assert.NotEmpty(t, got.PdfBase64)

	// The backend owns the vector store and reports only a count; no
	// chunk rows appear locally.
	assert.Zero(t, store.embeddingCount())
}

func TestConsumerMarksBookFailedOnBackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generation.PdfUploadResponse{Success: false, Message: "not a pdf"})
	}))
	defer srv.Close()

	store := &fakeStore{}
	book := seedPendingBook(t, store)
	pubSub := startConsumer(t, store, srv.URL)

	publishEmbed(t, pubSub, book.Id)

	require.Eventually(t, func() bool {
		status, _ := store.bookState(book.Id)
		return status == entity.EmbeddingStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	_, chunks := store.bookState(book.Id)
	assert.Zero(t, chunks)
}

func TestConsumerAcksDeletedBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for a deleted book")
	}))
	defer srv.Close()

	store := &fakeStore{}
	pubSub := startConsumer(t, store, srv.URL)

	publishEmbed(t, pubSub, uuid.New())

	// Give the consumer a moment; the absence of a backend call is the
	// assertion.
	time.Sleep(100 * time.Millisecond)
}
