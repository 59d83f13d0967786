package service

import (
	"context"
	"testing"

	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryReturnsOwnTurnsInOrder(t *testing.T) {
	store := &fakeStore{}
	svc := NewChatHistoryService(&fakeFactory{store: store})

	f := &chatFixture{store: store, userId: uuid.New(), bookId: uuid.New()}
	f.seedTurn(entity.SenderAI, "menu", entity.StateWaitingUserSelectFeature)
	f.seedTurn(entity.SenderUser, "1", entity.StateWaitingUserSelectFeature)
	f.seedTurn(entity.SenderAI, "criteria?", entity.StateWaitingProblemCriteriaSelection)

	// Another pair's turn must not leak into the transcript.
	other := &chatFixture{store: store, userId: uuid.New(), bookId: uuid.New()}
	other.seedTurn(entity.SenderUser, "unrelated", entity.StateWaitingUserSelectFeature)

	resp, err := svc.History(context.Background(), f.userId, f.bookId)
	require.NoError(t, err)

	assert.Equal(t, f.bookId, resp.BookId)
	require.Len(t, resp.Turns, 3)
	assert.Equal(t, "menu", resp.Turns[0].Content)
	assert.Equal(t, "1", resp.Turns[1].Content)
	assert.Equal(t, "criteria?", resp.Turns[2].Content)
}

func TestClearResetsConversation(t *testing.T) {
	store := &fakeStore{}
	histSvc := NewChatHistoryService(&fakeFactory{store: store})

	f := newChatFixture(t, "http://127.0.0.1:1")
	f.store = store
	f.seedTurn(entity.SenderAI, "menu", entity.StateWaitingUserSelectFeature)
	f.seedTurn(entity.SenderUser, "1", entity.StateWaitingUserSelectFeature)

	require.NoError(t, histSvc.Clear(context.Background(), f.userId, f.bookId))
	assert.Empty(t, store.turns)

	resp, err := histSvc.History(context.Background(), f.userId, f.bookId)
	require.NoError(t, err)
	assert.Empty(t, resp.Turns)
}

func TestClearThenSendStartsFromInitialState(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	histSvc := NewChatHistoryService(&fakeFactory{store: f.store})

	f.seedTurn(entity.SenderAI, "rate it", entity.StateWaitingConceptRating)
	require.NoError(t, histSvc.Clear(context.Background(), f.userId, f.bookId))

	// With the transcript gone, "1" is read against the feature menu
	// again instead of the rating prompt.
	resp := f.send(t, &dto.SendTurnRequest{Content: "1"})
	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StateWaitingProblemCriteriaSelection), resp.Turns[0].ChatState)
}
