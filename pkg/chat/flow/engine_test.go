package flow

import (
	"testing"

	"ai-booktutor-be/internal/entity"
)

func TestNextStateTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		current entity.ChatState
		input   string
		want    entity.ChatState
	}{
		{"menu selects question flow", entity.StateWaitingUserSelectFeature, "1", entity.StateWaitingProblemCriteriaSelection},
		{"menu selects page search", entity.StateWaitingUserSelectFeature, "2", entity.StateWaitingKeywordForPageSearch},
		{"menu selects explanation", entity.StateWaitingUserSelectFeature, "3", entity.StateWaitingConceptInput},
		{"menu reprompts on garbage", entity.StateWaitingUserSelectFeature, "banana", entity.StateWaitingUserSelectFeature},
		{"menu trims whitespace", entity.StateWaitingUserSelectFeature, "  1  ", entity.StateWaitingProblemCriteriaSelection},

		{"criteria always advances", entity.StateWaitingProblemCriteriaSelection, "hard ones please", entity.StateWaitingProblemContextInput},
		{"context with content generates", entity.StateWaitingProblemContextInput, "chapter 3", entity.StateGeneratingQuestionWithRAG},
		{"context empty reprompts", entity.StateWaitingProblemContextInput, "   ", entity.StateWaitingProblemContextInput},

		{"generation waits for answer", entity.StateGeneratingQuestionWithRAG, "anything", entity.StateWaitingUserAnswer},
		{"answer goes to evaluation", entity.StateWaitingUserAnswer, "my answer", entity.StateEvaluatingAnswerAndLogging},
		{"additional question goes to evaluation", entity.StateGeneratingAdditionalQuestion, "answer", entity.StateEvaluatingAnswerAndLogging},
		{"evaluation asks for rating", entity.StateEvaluatingAnswerAndLogging, "ignored", entity.StateWaitingConceptRating},

		{"rating 4 moves on", entity.StateWaitingConceptRating, "4", entity.StateWaitingNextActionAfterLearning},
		{"rating 5 moves on", entity.StateWaitingConceptRating, "5", entity.StateWaitingNextActionAfterLearning},
		{"rating 1 asks why", entity.StateWaitingConceptRating, "1", entity.StateWaitingReasonForLowRating},
		{"rating 2 asks why", entity.StateWaitingConceptRating, "2", entity.StateWaitingReasonForLowRating},
		{"rating 3 asks why", entity.StateWaitingConceptRating, "3", entity.StateWaitingReasonForLowRating},
		{"rating garbage reprompts", entity.StateWaitingConceptRating, "abc", entity.StateWaitingConceptRating},
		{"rating with whitespace parses", entity.StateWaitingConceptRating, " 4 ", entity.StateWaitingNextActionAfterLearning},

		{"low rating reason triggers reexplanation", entity.StateWaitingReasonForLowRating, "the second part", entity.StateReexplainingConcept},
		{"reexplanation asks rating again", entity.StateReexplainingConcept, "x", entity.StateWaitingConceptRating},

		{"next action 1 asks another question", entity.StateWaitingNextActionAfterLearning, "1", entity.StateGeneratingAdditionalQuestion},
		{"next action other returns to menu", entity.StateWaitingNextActionAfterLearning, "no thanks", entity.StateWaitingUserSelectFeature},

		{"concept input presents explanation", entity.StateWaitingConceptInput, "recursion", entity.StatePresentingConceptExplanation},
		{"explanation asks rating", entity.StatePresentingConceptExplanation, "x", entity.StateWaitingConceptRating},

		{"keyword triggers page search", entity.StateWaitingKeywordForPageSearch, "heap", entity.StateProcessingPageSearchResult},
		{"page search returns to menu", entity.StateProcessingPageSearchResult, "x", entity.StateWaitingUserSelectFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextState(tt.current, tt.input)
			if got != tt.want {
				t.Errorf("NextState(%s, %q) = %s, want %s", tt.current, tt.input, got, tt.want)
			}
		})
	}
}

// Every state must map every input to a member of the enum.
func TestNextStateTotality(t *testing.T) {
	inputs := []string{"", "1", "2", "3", "4", "5", "abc", "  ", "-7", "999", "こんにちは"}

	for _, state := range entity.AllChatStates {
		for _, input := range inputs {
			got := NextState(state, input)
			if !got.Valid() {
				t.Errorf("NextState(%s, %q) produced invalid state %q", state, input, got)
			}
		}
	}
}

func TestNextStateUnknownStateIsIdentity(t *testing.T) {
	unknown := entity.ChatState("SOME_LEGACY_STATE")
	if got := NextState(unknown, "1"); got != unknown {
		t.Errorf("unknown state should self-loop, got %s", got)
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOk bool
	}{
		{"4", 4, true},
		{" 5 ", 5, true},
		{"-2", -2, true},
		{"abc", 0, false},
		{"4.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseRating(tt.input)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseRating(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOk)
		}
	}
}
