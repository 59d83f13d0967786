package mapper

import (
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) TurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	var state *string
	if t.ChatState != nil {
		s := string(*t.ChatState)
		state = &s
	}
	return &model.ChatTurn{
		Id:          t.Id,
		UserId:      t.UserId,
		BookId:      t.BookId,
		Sender:      string(t.Sender),
		Content:     t.Content,
		MessageType: string(t.MessageType),
		ChatState:   state,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *ChatMapper) TurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	var state *entity.ChatState
	if t.ChatState != nil {
		s := entity.ChatState(*t.ChatState)
		state = &s
	}
	return &entity.ChatTurn{
		Id:          t.Id,
		UserId:      t.UserId,
		BookId:      t.BookId,
		Sender:      entity.Sender(t.Sender),
		Content:     t.Content,
		MessageType: entity.MessageType(t.MessageType),
		ChatState:   state,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *ChatMapper) TurnsToEntities(models []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(models))
	for i, t := range models {
		entities[i] = m.TurnToEntity(t)
	}
	return entities
}

func (m *ChatMapper) QuestionToModel(q *entity.QuestionRecord) *model.QuestionRecord {
	if q == nil {
		return nil
	}
	return &model.QuestionRecord{
		Id:            q.Id,
		UserId:        q.UserId,
		BookId:        q.BookId,
		Domain:        q.Domain,
		Concept:       q.Concept,
		ProblemText:   q.ProblemText,
		CorrectAnswer: q.CorrectAnswer,
		UserAnswer:    q.UserAnswer,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func (m *ChatMapper) QuestionToEntity(q *model.QuestionRecord) *entity.QuestionRecord {
	if q == nil {
		return nil
	}
	return &entity.QuestionRecord{
		Id:            q.Id,
		UserId:        q.UserId,
		BookId:        q.BookId,
		Domain:        q.Domain,
		Concept:       q.Concept,
		ProblemText:   q.ProblemText,
		CorrectAnswer: q.CorrectAnswer,
		UserAnswer:    q.UserAnswer,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}
