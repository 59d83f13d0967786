// Package flow holds the conversation transition engine. The engine is
// pure: the next state is a function of the current state and the raw
// user input, with no I/O involved.
package flow

import (
	"strconv"
	"strings"

	"ai-booktutor-be/internal/entity"
)

// Feature menu selections recognized in WAITING_USER_SELECT_FEATURE.
const (
	SelectQuestionGeneration = "1"
	SelectPageSearch         = "2"
	SelectConceptExplanation = "3"
)

// Ratings of 4 and above count as understood; 3 and below trigger the
// re-explanation loop.
const UnderstoodRatingThreshold = 4

// NextState computes the successor state for one user input. It is total:
// every (state, input) pair maps to a valid state, with unknown states
// resolving to themselves.
func NextState(current entity.ChatState, input string) entity.ChatState {
	switch current {
	case entity.StateWaitingUserSelectFeature:
		switch strings.TrimSpace(input) {
		case SelectQuestionGeneration:
			return entity.StateWaitingProblemCriteriaSelection
		case SelectPageSearch:
			return entity.StateWaitingKeywordForPageSearch
		case SelectConceptExplanation:
			return entity.StateWaitingConceptInput
		default:
			return entity.StateWaitingUserSelectFeature
		}

	case entity.StateWaitingProblemCriteriaSelection:
		return entity.StateWaitingProblemContextInput

	case entity.StateWaitingProblemContextInput:
		if strings.TrimSpace(input) == "" {
			return entity.StateWaitingProblemContextInput
		}
		return entity.StateGeneratingQuestionWithRAG

	case entity.StateGeneratingQuestionWithRAG:
		return entity.StateWaitingUserAnswer

	case entity.StateWaitingUserAnswer:
		return entity.StateEvaluatingAnswerAndLogging

	case entity.StateGeneratingAdditionalQuestion:
		return entity.StateEvaluatingAnswerAndLogging

	case entity.StateEvaluatingAnswerAndLogging:
		return entity.StateWaitingConceptRating

	case entity.StateWaitingConceptRating:
		rating, ok := ParseRating(input)
		if !ok {
			return entity.StateWaitingConceptRating
		}
		if rating >= UnderstoodRatingThreshold {
			return entity.StateWaitingNextActionAfterLearning
		}
		return entity.StateWaitingReasonForLowRating

	case entity.StateWaitingReasonForLowRating:
		return entity.StateReexplainingConcept

	case entity.StateReexplainingConcept:
		return entity.StateWaitingConceptRating

	case entity.StateWaitingNextActionAfterLearning:
		if strings.TrimSpace(input) == SelectQuestionGeneration {
			return entity.StateGeneratingAdditionalQuestion
		}
		return entity.StateWaitingUserSelectFeature

	case entity.StateWaitingConceptInput:
		return entity.StatePresentingConceptExplanation

	case entity.StatePresentingConceptExplanation:
		return entity.StateWaitingConceptRating

	case entity.StateWaitingKeywordForPageSearch:
		return entity.StateProcessingPageSearchResult

	case entity.StateProcessingPageSearchResult:
		return entity.StateWaitingUserSelectFeature
	}

	// Identity transition for anything unrecognized.
	return current
}

// ParseRating parses a 1-5 style understanding rating. Garbage input is
// not an error; the caller re-prompts in place.
func ParseRating(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	return n, true
}
