package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ai-booktutor-be/internal/constant"
	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/internal/pkg/serverutils"
	"ai-booktutor-be/internal/repository/contract"
	"ai-booktutor-be/internal/repository/memory"
	"ai-booktutor-be/internal/repository/specification"
	"ai-booktutor-be/internal/repository/unitofwork"
	"ai-booktutor-be/pkg/generation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// In-memory repository fakes. Turns keep insertion order, so "newest" is
// the last matching row and ascending reads are the slice itself.
// ---------------------------------------------------------------------------

type fakeStore struct {
	// mu guards books and embeddings, which the consumer mutates from
	// its own goroutine. Turn and record access stays single-threaded.
	mu         sync.Mutex
	turns      []*entity.ChatTurn
	records    []*entity.QuestionRecord
	users      []*entity.User
	books      []*entity.Book
	embeddings []*entity.BookPageEmbedding

	commits int
}

func turnMatches(t *entity.ChatTurn, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.OwnedByUser:
			if t.UserId != sp.UserID {
				return false
			}
		case specification.ByBook:
			if t.BookId != sp.BookID {
				return false
			}
		case specification.BySender:
			if t.Sender != sp.Sender {
				return false
			}
		case specification.ByChatState:
			if t.ChatState == nil || *t.ChatState != sp.State {
				return false
			}
		}
	}
	return true
}

type fakeTurnRepo struct{ store *fakeStore }

func (r *fakeTurnRepo) Append(_ context.Context, turn *entity.ChatTurn) error {
	r.store.turns = append(r.store.turns, turn)
	return nil
}

func (r *fakeTurnRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatTurn, error) {
	for i := len(r.store.turns) - 1; i >= 0; i-- {
		if turnMatches(r.store.turns[i], specs) {
			return r.store.turns[i], nil
		}
	}
	return nil, nil
}

func (r *fakeTurnRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	var out []*entity.ChatTurn
	for _, t := range r.store.turns {
		if turnMatches(t, specs) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTurnRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

func (r *fakeTurnRepo) DeleteAllForPair(_ context.Context, userId, bookId uuid.UUID) error {
	var kept []*entity.ChatTurn
	for _, t := range r.store.turns {
		if t.UserId != userId || t.BookId != bookId {
			kept = append(kept, t)
		}
	}
	r.store.turns = kept
	return nil
}

type fakeRecordRepo struct{ store *fakeStore }

func (r *fakeRecordRepo) Create(_ context.Context, record *entity.QuestionRecord) error {
	r.store.records = append(r.store.records, record)
	return nil
}

func (r *fakeRecordRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.QuestionRecord, error) {
	for i := len(r.store.records) - 1; i >= 0; i-- {
		rec := r.store.records[i]
		ok := true
		for _, s := range specs {
			switch sp := s.(type) {
			case specification.OwnedByUser:
				if rec.UserId != sp.UserID {
					ok = false
				}
			case specification.ByBook:
				if rec.BookId != sp.BookID {
					ok = false
				}
			}
		}
		if ok {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRecordRepo) UpdateUserAnswer(_ context.Context, id uuid.UUID, answer string) error {
	for _, rec := range r.store.records {
		if rec.Id == id {
			rec.UserAnswer = &answer
		}
	}
	return nil
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.users = append(r.store.users, user)
	return nil
}
func (r *fakeUserRepo) Update(_ context.Context, _ *entity.User) error { return nil }
func (r *fakeUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.store.users {
		ok := true
		for _, s := range specs {
			if sp, is := s.(specification.ByID); is && u.Id != sp.ID {
				ok = false
			}
		}
		if ok {
			return u, nil
		}
	}
	return nil, nil
}
func (r *fakeUserRepo) ActivateUser(_ context.Context, _ uuid.UUID) error           { return nil }
func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (r *fakeUserRepo) CreateEmailVerificationToken(_ context.Context, _ *entity.EmailVerificationToken) error {
	return nil
}
func (r *fakeUserRepo) FindEmailVerificationToken(_ context.Context, _ ...specification.Specification) (*entity.EmailVerificationToken, error) {
	return nil, nil
}
func (r *fakeUserRepo) DeleteEmailVerificationToken(_ context.Context, _ uuid.UUID) error { return nil }
func (r *fakeUserRepo) CreatePasswordResetToken(_ context.Context, _ *entity.PasswordResetToken) error {
	return nil
}
func (r *fakeUserRepo) FindPasswordResetToken(_ context.Context, _ ...specification.Specification) (*entity.PasswordResetToken, error) {
	return nil, nil
}
func (r *fakeUserRepo) MarkTokenUsed(_ context.Context, _ uuid.UUID) error       { return nil }
func (r *fakeUserRepo) CreateRefreshToken(_ context.Context, _ *entity.UserRefreshToken) error {
	return nil
}
func (r *fakeUserRepo) RevokeRefreshToken(_ context.Context, _ string) error { return nil }

type fakeBookRepo struct{ store *fakeStore }

func (r *fakeBookRepo) Create(_ context.Context, book *entity.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.books = append(r.store.books, book)
	return nil
}
func (r *fakeBookRepo) Update(_ context.Context, _ *entity.Book) error { return nil }
func (r *fakeBookRepo) Delete(_ context.Context, _ uuid.UUID) error    { return nil }
func (r *fakeBookRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.books {
		ok := true
		for _, s := range specs {
			if sp, is := s.(specification.ByID); is && b.Id != sp.ID {
				ok = false
			}
		}
		if ok {
			return b, nil
		}
	}
	return nil, nil
}
func (r *fakeBookRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Book, error) {
	return nil, nil
}
func (r *fakeBookRepo) UpdateEmbeddingStatus(_ context.Context, id uuid.UUID, status entity.EmbeddingStatus, chunkCount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.books {
		if b.Id == id {
			b.EmbeddingStatus = status
			b.ChunkCount = chunkCount
		}
	}
	return nil
}

type fakeEmbeddingRepo struct{ store *fakeStore }

func (r *fakeEmbeddingRepo) CreateBulk(_ context.Context, embeddings []*entity.BookPageEmbedding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.embeddings = append(r.store.embeddings, embeddings...)
	return nil
}
func (r *fakeEmbeddingRepo) DeleteByBookId(_ context.Context, _ uuid.UUID) error { return nil }
func (r *fakeEmbeddingRepo) CountByBookId(_ context.Context, bookId uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, e := range r.store.embeddings {
		if e.BookId == bookId {
			n++
		}
	}
	return n, nil
}

type fakeUow struct {
	store *fakeStore
	inTx  bool
}

func (u *fakeUow) Begin(_ context.Context) error {
	u.inTx = true
	return nil
}
func (u *fakeUow) Commit() error {
	u.inTx = false
	u.store.commits++
	return nil
}
func (u *fakeUow) Rollback() error {
	u.inTx = false
	return nil
}
func (u *fakeUow) UserRepository() contract.UserRepository { return &fakeUserRepo{store: u.store} }
func (u *fakeUow) BookRepository() contract.BookRepository { return &fakeBookRepo{store: u.store} }
func (u *fakeUow) BookEmbeddingRepository() contract.BookEmbeddingRepository {
	return &fakeEmbeddingRepo{store: u.store}
}
func (u *fakeUow) ChatTurnRepository() contract.ChatTurnRepository {
	return &fakeTurnRepo{store: u.store}
}
func (u *fakeUow) QuestionRecordRepository() contract.QuestionRecordRepository {
	return &fakeRecordRepo{store: u.store}
}

type fakeFactory struct{ store *fakeStore }

func (f *fakeFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type nopLogger struct{}

func (nopLogger) Debug(_, _ string, _ map[string]interface{}) {}
func (nopLogger) Info(_, _ string, _ map[string]interface{})  {}
func (nopLogger) Warn(_, _ string, _ map[string]interface{})  {}
func (nopLogger) Error(_, _ string, _ map[string]interface{}) {}
func (nopLogger) Sync() error                                 { return nil }

type captureNotifier struct {
	userId uuid.UUID
	turns  []dto.TurnResponse
	calls  int
}

func (n *captureNotifier) NotifyTurns(userId uuid.UUID, turns []dto.TurnResponse) {
	n.userId = userId
	n.turns = turns
	n.calls++
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type chatFixture struct {
	svc      IChatService
	store    *fakeStore
	notifier *captureNotifier
	userId   uuid.UUID
	bookId   uuid.UUID
}

func newChatFixture(t *testing.T, baseURL string) *chatFixture {
	t.Helper()
	store := &fakeStore{}
	notifier := &captureNotifier{}
	svc := NewChatService(
		&fakeFactory{store: store},
		generation.NewClient(baseURL, 2*time.Second),
		memory.NewConversationLocks(),
		notifier,
		nopLogger{},
	)
	return &chatFixture{
		svc:      svc,
		store:    store,
		notifier: notifier,
		userId:   uuid.New(),
		bookId:   uuid.New(),
	}
}

func (f *chatFixture) seedTurn(sender entity.Sender, content string, state entity.ChatState) {
	s := state
	f.store.turns = append(f.store.turns, &entity.ChatTurn{
		Id:          uuid.New(),
		UserId:      f.userId,
		BookId:      f.bookId,
		Sender:      sender,
		Content:     content,
		MessageType: entity.MessageTypeText,
		ChatState:   &s,
		CreatedAt:   time.Now(),
	})
}

func (f *chatFixture) seedRecord() *entity.QuestionRecord {
	rec := &entity.QuestionRecord{
		Id:            uuid.New(),
		UserId:        f.userId,
		BookId:        f.bookId,
		Domain:        "algorithms",
		Concept:       "merge sort",
		ProblemText:   "What is the time complexity of merge sort?",
		CorrectAnswer: "O(n log n)",
		CreatedAt:     time.Now(),
	}
	f.store.records = append(f.store.records, rec)
	return rec
}

func (f *chatFixture) seedUser() {
	f.store.users = append(f.store.users, &entity.User{
		Id:    f.userId,
		Email: "learner@example.com",
	})
}

func (f *chatFixture) send(t *testing.T, req *dto.SendTurnRequest) *dto.SendTurnResponse {
	t.Helper()
	req.BookId = f.bookId
	resp, err := f.svc.SendTurn(context.Background(), f.userId, req)
	require.NoError(t, err)
	return resp
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSendTurnBlankContentPrimesMenu(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")

	resp := f.send(t, &dto.SendTurnRequest{Content: "   "})

	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.SenderAI), resp.Turns[0].Sender)
	assert.Equal(t, string(entity.InitialState), resp.Turns[0].ChatState)
	assert.Equal(t, string(entity.MessageTypeSelection), resp.Turns[0].MessageType)

	// No user turn is persisted for blank input.
	require.Len(t, f.store.turns, 1)
	assert.Equal(t, entity.SenderAI, f.store.turns[0].Sender)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestSendTurnLocalTransitionFromMenu(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	f.seedTurn(entity.SenderAI, "menu", entity.StateWaitingUserSelectFeature)

	resp := f.send(t, &dto.SendTurnRequest{Content: "1"})

	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StateWaitingProblemCriteriaSelection), resp.Turns[0].ChatState)

	// User turn carries the state it was typed in, AI turn the state it
	// was produced for.
	require.Len(t, f.store.turns, 3)
	userTurn := f.store.turns[1]
	aiTurn := f.store.turns[2]
	assert.Equal(t, entity.SenderUser, userTurn.Sender)
	assert.Equal(t, entity.StateWaitingUserSelectFeature, *userTurn.ChatState)
	assert.Equal(t, entity.SenderAI, aiTurn.Sender)
	assert.Equal(t, entity.StateWaitingProblemCriteriaSelection, *aiTurn.ChatState)
	assert.Equal(t, 1, f.store.commits)
}

func TestSendTurnRecoversStateFromHistory(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	f.seedTurn(entity.SenderAI, "rate it", entity.StateWaitingConceptRating)

	resp := f.send(t, &dto.SendTurnRequest{Content: "4"})

	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StateWaitingNextActionAfterLearning), resp.Turns[0].ChatState)
}

func TestSendTurnExplicitStateOverride(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	f.seedTurn(entity.SenderAI, "menu", entity.StateWaitingUserSelectFeature)

	resp := f.send(t, &dto.SendTurnRequest{
		Content:   "2",
		ChatState: string(entity.StateWaitingConceptRating),
	})

	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StateWaitingReasonForLowRating), resp.Turns[0].ChatState)
}

func TestSendTurnRejectsUnknownStateOverride(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")

	_, err := f.svc.SendTurn(context.Background(), f.userId, &dto.SendTurnRequest{
		BookId:    f.bookId,
		Content:   "1",
		ChatState: "NOT_A_STATE",
	})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Empty(t, f.store.turns)
}

func TestSendTurnQuestionGenerationCreatesRecord(t *testing.T) {
	var got generation.QuestionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generating-question", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generation.QuestionResponse{
			Domain:        "algorithms",
			Concept:       "merge sort",
			ProblemText:   "Explain the merge step of merge sort.",
			CorrectAnswer: "It interleaves two sorted runs.",
		})
	}))
	defer srv.Close()

	f := newChatFixture(t, srv.URL)
	f.seedTurn(entity.SenderUser, "medium difficulty", entity.StateWaitingProblemCriteriaSelection)
	f.seedTurn(entity.SenderAI, "which topic?", entity.StateWaitingProblemContextInput)

	resp := f.send(t, &dto.SendTurnRequest{Content: "chapter 3"})

	assert.Equal(t, "medium difficulty", got.Criteria)
	assert.Equal(t, "chapter 3", got.Context)

	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StateGeneratingQuestionWithRAG), resp.Turns[0].ChatState)
	assert.Equal(t, "Explain the merge step of merge sort.", resp.Turns[0].Content)

	require.Len(t, f.store.records, 1)
	assert.Equal(t, "merge sort", f.store.records[0].Concept)
	assert.Equal(t, f.userId, f.store.records[0].UserId)
}

func TestSendTurnEvaluationCapturesAnswerAndFollowsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/evaluating/answer", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "Close, but check the merge step."})
	}))
	defer srv.Close()

	f := newChatFixture(t, srv.URL)
	rec := f.seedRecord()
	f.seedTurn(entity.SenderAI, "your answer?", entity.StateWaitingUserAnswer)

	resp := f.send(t, &dto.SendTurnRequest{Content: "O(n^2)"})

	// Evaluation produces the remote feedback plus the local rating
	// prompt in the same response.
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, string(entity.StateEvaluatingAnswerAndLogging), resp.Turns[0].ChatState)
	assert.Equal(t, "Close, but check the merge step.", resp.Turns[0].Content)
	assert.Equal(t, string(entity.StateWaitingConceptRating), resp.Turns[1].ChatState)
	assert.Equal(t, string(entity.MessageTypeRating), resp.Turns[1].MessageType)

	require.NotNil(t, rec.UserAnswer)
	assert.Equal(t, "O(n^2)", *rec.UserAnswer)
	assert.Equal(t, 1, f.store.commits)
}

func TestSendTurnEvaluationWithoutRecordConflicts(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	f.seedTurn(entity.SenderAI, "your answer?", entity.StateWaitingUserAnswer)

	_, err := f.svc.SendTurn(context.Background(), f.userId, &dto.SendTurnRequest{
		BookId:  f.bookId,
		Content: "some answer",
	})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	// Nothing was written.
	assert.Len(t, f.store.turns, 1)
	assert.Equal(t, 0, f.store.commits)
}

func TestSendTurnExplanationUsesTypedConcept(t *testing.T) {
	var got generation.ExplanationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/explanation", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"message": "Recursion is a function calling itself."})
	}))
	defer srv.Close()

	f := newChatFixture(t, srv.URL)
	f.seedUser()
	f.seedRecord()
	f.seedTurn(entity.SenderAI, "which concept?", entity.StateWaitingConceptInput)

	resp := f.send(t, &dto.SendTurnRequest{Content: "recursion"})

	assert.Equal(t, "recursion", got.Concept)
	require.NotNil(t, got.Detail)

	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StatePresentingConceptExplanation), resp.Turns[0].ChatState)
	assert.Equal(t, "Recursion is a function calling itself.", resp.Turns[0].Content)
}

func TestSendTurnBackendFailureFallsBackToApology(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	f.seedTurn(entity.SenderAI, "keyword?", entity.StateWaitingKeywordForPageSearch)

	resp := f.send(t, &dto.SendTurnRequest{Content: "heap"})

	// The state still advances; only the content degrades.
	require.Len(t, resp.Turns, 1)
	assert.Equal(t, string(entity.StateProcessingPageSearchResult), resp.Turns[0].ChatState)
	assert.Equal(t, constant.GenerationFailureMessage, resp.Turns[0].Content)
	assert.Equal(t, 1, f.store.commits)
}

func TestSendTurnNotifiesConnectedClients(t *testing.T) {
	f := newChatFixture(t, "http://127.0.0.1:1")
	f.seedTurn(entity.SenderAI, "menu", entity.StateWaitingUserSelectFeature)

	resp := f.send(t, &dto.SendTurnRequest{Content: "3"})

	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, f.userId, f.notifier.userId)
	assert.Equal(t, resp.Turns, f.notifier.turns)
}

func TestPingReflectsBackendHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	up := newChatFixture(t, srv.URL)
	assert.True(t, up.svc.Ping(context.Background()).GenerationBackendAlive)

	down := newChatFixture(t, "http://127.0.0.1:1")
	assert.False(t, down.svc.Ping(context.Background()).GenerationBackendAlive)
}
