// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"time"

	"ai-booktutor-be/internal/constant"
	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/pkg/logger"
	"ai-booktutor-be/internal/pkg/serverutils"
	"ai-booktutor-be/internal/repository/memory"
	"ai-booktutor-be/internal/repository/specification"
	"ai-booktutor-be/internal/repository/unitofwork"
	"ai-booktutor-be/pkg/chat/explain"
	"ai-booktutor-be/pkg/chat/flow"
	"ai-booktutor-be/pkg/chat/respond"
	"ai-booktutor-be/pkg/generation"

	"github.com/google/uuid"
)

type IChatService interface {
	SendTurn(ctx context.Context, userId uuid.UUID, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	Ping(ctx context.Context) *dto.ChatPingResponse
}

// ITurnNotifier pushes freshly produced AI turns to connected clients.
// Implemented by the websocket hub; nil disables pushing.
type ITurnNotifier interface {
	NotifyTurns(userId uuid.UUID, turns []dto.TurnResponse)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	genClient  *generation.Client
	locks      *memory.ConversationLocks
	notifier   ITurnNotifier
	log        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	genClient *generation.Client,
	locks *memory.ConversationLocks,
	notifier ITurnNotifier,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		genClient:  genClient,
		locks:      locks,
		notifier:   notifier,
		log:        log,
	}
}

// SendTurn processes one inbound user message and returns the one or two
// AI turns it produced. Turns for the same (user, book) pair are
// serialized; state is resolved fresh from history on every call.
func (c *chatService) SendTurn(ctx context.Context, userId uuid.UUID, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	unlock := c.locks.Acquire(userId, req.BookId)
	defer unlock()

	uow := c.uowFactory.NewUnitOfWork(ctx)

	currentState, err := c.resolveState(ctx, uow, userId, req)
	if err != nil {
		return nil, err
	}

	if isBlank(req.Content) {
		return c.primeConversation(ctx, uow, userId, req.BookId)
	}

	nextState := flow.NextState(currentState, req.Content)

	record, err := uow.QuestionRecordRepository().FindOne(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByBook{BookID: req.BookId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	// Remote states answer from the generation backend; everything else
	// uses a canned template. Remote transport failures degrade to a
	// fixed apology still tagged with the attempted state.
	var aiContent string
	var aiType entity.MessageType
	var newRecord *entity.QuestionRecord

	if nextState.IsRemote() {
		aiContent, newRecord, err = c.remoteResponse(ctx, uow, userId, req, nextState, record)
		if err != nil {
			return nil, err
		}
		aiType = entity.MessageTypeText
	} else {
		local := respond.ForState(nextState)
		aiContent = local.Content
		aiType = local.MessageType
	}

	// All writes for the turn commit as a unit.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if nextState == entity.StateEvaluatingAnswerAndLogging && record != nil {
		if err := uow.QuestionRecordRepository().UpdateUserAnswer(ctx, record.Id, req.Content); err != nil {
			return nil, err
		}
	}

	if newRecord != nil {
		if err := uow.QuestionRecordRepository().Create(ctx, newRecord); err != nil {
			return nil, err
		}
	}

	userTurn := &entity.ChatTurn{
		Id:          uuid.New(),
		UserId:      userId,
		BookId:      req.BookId,
		Sender:      entity.SenderUser,
		Content:     req.Content,
		MessageType: messageTypeOrText(req.MessageType),
		ChatState:   statePtr(currentState),
		CreatedAt:   time.Now(),
	}
	if err := uow.ChatTurnRepository().Append(ctx, userTurn); err != nil {
		return nil, err
	}

	aiTurns := []*entity.ChatTurn{{
		Id:          uuid.New(),
		UserId:      userId,
		BookId:      req.BookId,
		Sender:      entity.SenderAI,
		Content:     aiContent,
		MessageType: aiType,
		ChatState:   statePtr(nextState),
		CreatedAt:   time.Now(),
	}}

	// Evaluation feedback and re-explanations auto-advance with a second
	// local turn so the UI doesn't need another round trip.
	if nextState == entity.StateEvaluatingAnswerAndLogging || nextState == entity.StateReexplainingConcept {
		followState := flow.NextState(nextState, req.Content)
		local := respond.ForState(followState)
		aiTurns = append(aiTurns, &entity.ChatTurn{
			Id:          uuid.New(),
			UserId:      userId,
			BookId:      req.BookId,
			Sender:      entity.SenderAI,
			Content:     local.Content,
			MessageType: local.MessageType,
			ChatState:   statePtr(followState),
			CreatedAt:   time.Now(),
		})
	}

	for _, turn := range aiTurns {
		if err := uow.ChatTurnRepository().Append(ctx, turn); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	resp := &dto.SendTurnResponse{Turns: turnsToDTO(aiTurns)}
	if c.notifier != nil {
		c.notifier.NotifyTurns(userId, resp.Turns)
	}
	return resp, nil
}

func (c *chatService) Ping(ctx context.Context) *dto.ChatPingResponse {
	return &dto.ChatPingResponse{
		GenerationBackendAlive: c.genClient.Ping(ctx),
	}
}

// resolveState picks the caller's explicit override when valid, else the
// state of the newest persisted turn, else the initial state.
func (c *chatService) resolveState(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, req *dto.SendTurnRequest) (entity.ChatState, error) {
	if req.ChatState != "" {
		explicit := entity.ChatState(req.ChatState)
		if !explicit.Valid() {
			return "", serverutils.NewBadRequestError("Unknown chat state: " + req.ChatState)
		}
		return explicit, nil
	}

	latest, err := uow.ChatTurnRepository().FindOne(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByBook{BookID: req.BookId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return "", err
	}
	return latest.StateOrInitial(), nil
}

// primeConversation handles blank input: no user turn is persisted, one
// local AI turn re-primes the feature menu.
func (c *chatService) primeConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, bookId uuid.UUID) (*dto.SendTurnResponse, error) {
	local := respond.ForState(entity.InitialState)
	turn := &entity.ChatTurn{
		Id:          uuid.New(),
		UserId:      userId,
		BookId:      bookId,
		Sender:      entity.SenderAI,
		Content:     local.Content,
		MessageType: local.MessageType,
		ChatState:   statePtr(entity.InitialState),
		CreatedAt:   time.Now(),
	}
	if err := uow.ChatTurnRepository().Append(ctx, turn); err != nil {
		return nil, err
	}

	resp := &dto.SendTurnResponse{Turns: turnsToDTO([]*entity.ChatTurn{turn})}
	if c.notifier != nil {
		c.notifier.NotifyTurns(userId, resp.Turns)
	}
	return resp, nil
}

// remoteResponse dispatches to the state-specific generation endpoint.
// A question-generation response additionally yields a new question
// record to persist. Transport failures are recovered into the fixed
// apology message; a missing question record where one is required is a
// client-visible error instead.
func (c *chatService) remoteResponse(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	req *dto.SendTurnRequest,
	nextState entity.ChatState,
	record *entity.QuestionRecord,
) (string, *entity.QuestionRecord, error) {
	switch nextState {
	case entity.StateGeneratingQuestionWithRAG, entity.StateGeneratingAdditionalQuestion:
		criteria, err := c.latestInputForState(ctx, uow, userId, req.BookId, entity.StateWaitingProblemCriteriaSelection)
		if err != nil {
			return "", nil, err
		}

		qReq := generation.QuestionRequest{
			UserId:   userId.String(),
			BookId:   req.BookId.String(),
			Criteria: criteria,
			Context:  req.Content,
		}

		var q *generation.QuestionResponse
		if nextState == entity.StateGeneratingQuestionWithRAG {
			q, err = c.genClient.GenerateQuestion(ctx, qReq)
		} else {
			q, err = c.genClient.GenerateAdditionalQuestion(ctx, qReq)
		}
		if err != nil {
			return c.apology(nextState, err), nil, nil
		}

		now := time.Now()
		return q.ProblemText, &entity.QuestionRecord{
			Id:            uuid.New(),
			UserId:        userId,
			BookId:        req.BookId,
			Domain:        q.Domain,
			Concept:       q.Concept,
			ProblemText:   q.ProblemText,
			CorrectAnswer: q.CorrectAnswer,
			CreatedAt:     now,
			UpdatedAt:     &now,
		}, nil

	case entity.StateEvaluatingAnswerAndLogging:
		if record == nil {
			return "", nil, serverutils.NewConflictError("No question has been generated yet, so there is nothing to evaluate")
		}
		msg, err := c.genClient.EvaluateAnswer(ctx, generation.EvaluationRequest{
			UserId:        userId.String(),
			BookId:        req.BookId.String(),
			ProblemText:   record.ProblemText,
			CorrectAnswer: record.CorrectAnswer,
			UserAnswer:    req.Content,
		})
		if err != nil {
			return c.apology(nextState, err), nil, nil
		}
		return msg, nil, nil

	case entity.StatePresentingConceptExplanation, entity.StateReexplainingConcept:
		msg, err := c.explainConcept(ctx, uow, userId, req, nextState, record)
		if err != nil {
			return "", nil, err
		}
		return msg, nil, nil

	case entity.StateProcessingPageSearchResult:
		msg, err := c.genClient.SearchPages(ctx, generation.PageSearchRequest{
			UserId:  userId.String(),
			BookId:  req.BookId.String(),
			Keyword: req.Content,
		})
		if err != nil {
			return c.apology(nextState, err), nil, nil
		}
		return msg, nil, nil
	}

	// Unreachable while IsRemote and this switch stay in sync.
	return c.apology(nextState, nil), nil, nil
}

func (c *chatService) explainConcept(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	req *dto.SendTurnRequest,
	nextState entity.ChatState,
	record *entity.QuestionRecord,
) (string, error) {
	if record == nil {
		return "", serverutils.NewConflictError("No question has been generated yet, so there is no concept to explain")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", serverutils.NewUnauthorizedError("User no longer exists")
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByBook{BookID: req.BookId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return "", err
	}

	detail, err := explain.Build(user, record, turns, time.Now())
	if err != nil {
		return "", serverutils.NewConflictError(err.Error())
	}

	concept := record.Concept
	if nextState == entity.StatePresentingConceptExplanation {
		// The user just typed the concept they want explained.
		concept = req.Content
	}

	msg, err := c.genClient.ExplainConcept(ctx, generation.ExplanationRequest{
		UserId:  userId.String(),
		BookId:  req.BookId.String(),
		Concept: concept,
		Detail:  detail,
	})
	if err != nil {
		return c.apology(nextState, err), nil
	}
	return msg, nil
}

func (c *chatService) latestInputForState(ctx context.Context, uow unitofwork.UnitOfWork, userId, bookId uuid.UUID, state entity.ChatState) (string, error) {
	turn, err := uow.ChatTurnRepository().FindOne(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByBook{BookID: bookId},
		specification.BySender{Sender: entity.SenderUser},
		specification.ByChatState{State: state},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return "", err
	}
	if turn == nil {
		return "", nil
	}
	return turn.Content, nil
}

func (c *chatService) apology(attempted entity.ChatState, cause error) string {
	details := map[string]interface{}{"state": string(attempted)}
	if cause != nil {
		details["error"] = cause.Error()
	}
	c.log.Error("chat", "generation backend call failed, falling back to apology", details)
	return constant.GenerationFailureMessage
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func messageTypeOrText(raw string) entity.MessageType {
	switch entity.MessageType(raw) {
	case entity.MessageTypeSelection:
		return entity.MessageTypeSelection
	case entity.MessageTypeRating:
		return entity.MessageTypeRating
	default:
		return entity.MessageTypeText
	}
}

func statePtr(s entity.ChatState) *entity.ChatState {
	return &s
}

func turnsToDTO(turns []*entity.ChatTurn) []dto.TurnResponse {
	out := make([]dto.TurnResponse, len(turns))
	for i, t := range turns {
		out[i] = dto.TurnResponse{
			Id:          t.Id,
			UserId:      t.UserId,
			BookId:      t.BookId,
			Sender:      string(t.Sender),
			Content:     t.Content,
			MessageType: string(t.MessageType),
			ChatState:   string(t.StateOrInitial()),
			CreatedAt:   t.CreatedAt,
		}
	}
	return out
}
