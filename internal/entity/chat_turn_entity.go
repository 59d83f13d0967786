// FILE: internal/entity/chat_turn_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type Sender string
type MessageType string

const (
	SenderAI   Sender = "AI"
	SenderUser Sender = "USER"

	MessageTypeText      MessageType = "TEXT"
	MessageTypeSelection MessageType = "SELECTION"
	MessageTypeRating    MessageType = "RATING"
)

// ChatState is the single flat conversation state. The two-axis
// feature/stage representation from early revisions was dropped.
type ChatState string

const (
	// Feature selection entry point. Every completed sub-flow loops back here.
	StateWaitingUserSelectFeature ChatState = "WAITING_USER_SELECT_FEATURE"

	// Question-generation flow
	StateWaitingProblemCriteriaSelection ChatState = "WAITING_PROBLEM_CRITERIA_SELECTION"
	StateWaitingProblemContextInput      ChatState = "WAITING_PROBLEM_CONTEXT_INPUT"
	StateGeneratingQuestionWithRAG       ChatState = "GENERATING_QUESTION_WITH_RAG"
	StateWaitingUserAnswer               ChatState = "WAITING_USER_ANSWER"
	StateGeneratingAdditionalQuestion    ChatState = "GENERATING_ADDITIONAL_QUESTION_WITH_RAG"
	StateEvaluatingAnswerAndLogging      ChatState = "EVALUATING_ANSWER_AND_LOGGING"
	StateWaitingNextActionAfterLearning  ChatState = "WAITING_NEXT_ACTION_AFTER_LEARNING"

	// Concept-explanation loop (shared by both entry flows)
	StatePresentingConceptExplanation ChatState = "PRESENTING_CONCEPT_EXPLANATION"
	StateWaitingConceptRating         ChatState = "WAITING_CONCEPT_RATING"
	StateWaitingReasonForLowRating    ChatState = "WAITING_REASON_FOR_LOW_RATING"
	StateReexplainingConcept          ChatState = "REEXPLAINING_CONCEPT"
	StateWaitingConceptInput          ChatState = "WAITING_CONCEPT_INPUT"

	// Page-search flow
	StateWaitingKeywordForPageSearch ChatState = "WAITING_KEYWORD_FOR_PAGE_SEARCH"
	StateProcessingPageSearchResult  ChatState = "PROCESSING_PAGE_SEARCH_RESULT"
)

// InitialState is where a conversation with no history starts.
const InitialState = StateWaitingUserSelectFeature

// AllChatStates lists every member of the enum, used for validation
// and totality checks.
var AllChatStates = []ChatState{
	StateWaitingUserSelectFeature,
	StateWaitingProblemCriteriaSelection,
	StateWaitingProblemContextInput,
	StateGeneratingQuestionWithRAG,
	StateWaitingUserAnswer,
	StateGeneratingAdditionalQuestion,
	StateEvaluatingAnswerAndLogging,
	StateWaitingNextActionAfterLearning,
	StatePresentingConceptExplanation,
	StateWaitingConceptRating,
	StateWaitingReasonForLowRating,
	StateReexplainingConcept,
	StateWaitingConceptInput,
	StateWaitingKeywordForPageSearch,
	StateProcessingPageSearchResult,
}

func (s ChatState) Valid() bool {
	for _, known := range AllChatStates {
		if s == known {
			return true
		}
	}
	return false
}

// IsRemote reports whether the response for this state must come from
// the generation backend instead of a local template.
func (s ChatState) IsRemote() bool {
	switch s {
	case StateGeneratingQuestionWithRAG,
		StateGeneratingAdditionalQuestion,
		StateEvaluatingAnswerAndLogging,
		StatePresentingConceptExplanation,
		StateReexplainingConcept,
		StateProcessingPageSearchResult:
		return true
	}
	return false
}

// ChatTurn is one persisted message of a (user, book) conversation.
// Turns are append-only; CreatedAt is the ordering key.
type ChatTurn struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	BookId      uuid.UUID
	Sender      Sender
	Content     string
	MessageType MessageType
	// Nil only on legacy rows written before states were recorded.
	ChatState *ChatState
	CreatedAt time.Time
}

// StateOrInitial resolves the turn's state, falling back to the
// initial state for legacy rows.
func (t *ChatTurn) StateOrInitial() ChatState {
	if t == nil || t.ChatState == nil {
		return InitialState
	}
	return *t.ChatState
}
