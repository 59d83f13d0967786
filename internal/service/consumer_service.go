// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"time"

	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/pkg/logger"
	"ai-booktutor-be/internal/repository/specification"
	"ai-booktutor-be/internal/repository/unitofwork"
	"ai-booktutor-be/pkg/events"
	"ai-booktutor-be/pkg/generation"
	pktNats "ai-booktutor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the embed-book topic: for each scheduled book
// it ships the PDF to the generation backend and records the outcome on
// the book row.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	genClient      *generation.Client
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	genClient *generation.Client,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		genClient:      genClient,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedBookMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal embed message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages so they don't retry forever.
		msg.Ack()
		return
	}

	cs.log.Info("consumer", "processing book embedding", map[string]interface{}{
		"book_id": payload.BookId,
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	book, err := uow.BookRepository().FindOne(ctx, specification.ByID{ID: payload.BookId})
	if err != nil {
		cs.log.Error("consumer", "failed to load book", map[string]interface{}{
			"book_id": payload.BookId,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if book == nil {
		// Deleted before we got to it.
		msg.Ack()
		return
	}

	raw, err := os.ReadFile(book.FilePath)
	if err != nil {
		cs.log.Error("consumer", "failed to read stored PDF", map[string]interface{}{
			"book_id": book.Id,
			"path":    book.FilePath,
			"error":   err.Error(),
		})
		cs.markFailed(ctx, uow, book)
		msg.Ack()
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	resp, err := cs.genClient.UploadPdf(callCtx, generation.PdfUploadRequest{
		PdfBase64: base64.StdEncoding.EncodeToString(raw),
		BookId:    book.Id.String(),
		UserId:    book.UserId.String(),
	})
	if err != nil {
		cs.log.Error("consumer", "embedding upload failed", map[string]interface{}{
			"book_id": book.Id,
			"error":   err.Error(),
		})
		cs.markFailed(ctx, uow, book)
		msg.Ack()
		return
	}

	if err := uow.BookRepository().UpdateEmbeddingStatus(ctx, book.Id, entity.EmbeddingStatusReady, resp.ChunksCreated); err != nil {
		cs.log.Error("consumer", "failed to record embedding result", map[string]interface{}{
			"book_id": book.Id,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	// The backend owns the vector store; local chunk rows exist only
	// where seed/ops tooling created them. A count mismatch is logged,
	// the backend's number stays authoritative.
	if local, err := uow.BookEmbeddingRepository().CountByBookId(ctx, book.Id); err == nil && local > 0 && int(local) != resp.ChunksCreated {
		cs.log.Warn("consumer", "local chunk mirror out of sync", map[string]interface{}{
			"book_id": book.Id,
			"local":   local,
			"backend": resp.ChunksCreated,
		})
	}

	if cs.eventPublisher != nil {
		evt := events.NewBookEmbeddedEvent(book.UserId.String(), book.Id.String(), resp.ChunksCreated)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("consumer", "failed to publish BOOK_EMBEDDED event", map[string]interface{}{
				"book_id": book.Id,
				"error":   err.Error(),
			})
		}
	}

	msg.Ack()
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, book *entity.Book) {
	if err := uow.BookRepository().UpdateEmbeddingStatus(ctx, book.Id, entity.EmbeddingStatusFailed, 0); err != nil {
		cs.log.Error("consumer", "failed to mark embedding as failed", map[string]interface{}{
			"book_id": book.Id,
			"error":   err.Error(),
		})
	}
}
