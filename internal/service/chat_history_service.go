package service

import (
	"context"

	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/repository/specification"
	"ai-booktutor-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatHistoryService interface {
	History(ctx context.Context, userId, bookId uuid.UUID) (*dto.ChatHistoryResponse, error)
	Clear(ctx context.Context, userId, bookId uuid.UUID) error
}

type chatHistoryService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChatHistoryService(uowFactory unitofwork.RepositoryFactory) IChatHistoryService {
	return &chatHistoryService{uowFactory: uowFactory}
}

// History returns the full transcript in ascending creation order.
func (c *chatHistoryService) History(ctx context.Context, userId, bookId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByBook{BookID: bookId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	return &dto.ChatHistoryResponse{
		BookId: bookId,
		Turns:  turnsToDTO(turns),
	}, nil
}

// Clear wipes the conversation so the next turn starts from the initial
// state again.
func (c *chatHistoryService) Clear(ctx context.Context, userId, bookId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatTurnRepository().DeleteAllForPair(ctx, userId, bookId)
}
