// Package respond renders the local (non-remote) side of the tutoring
// conversation: fixed prompts keyed by the state the AI turn is produced
// for.
package respond

import "ai-booktutor-be/internal/entity"

// LocalResponse holds the canned content and how the UI should render
// the input it solicits.
type LocalResponse struct {
	Content     string
	MessageType entity.MessageType
}

const featureMenu = "What would you like to do?\n" +
	"1. Practice with a generated question\n" +
	"2. Search for a page in the book\n" +
	"3. Get a concept explained\n" +
	"Reply with 1, 2 or 3."

var templates = map[entity.ChatState]LocalResponse{
	entity.StateWaitingUserSelectFeature: {
		Content:     featureMenu,
		MessageType: entity.MessageTypeSelection,
	},
	entity.StateWaitingProblemCriteriaSelection: {
		Content:     "What kind of question should I prepare? Tell me the difficulty or question style you want.",
		MessageType: entity.MessageTypeText,
	},
	entity.StateWaitingProblemContextInput: {
		Content:     "Which topic or part of the book should the question cover?",
		MessageType: entity.MessageTypeText,
	},
	entity.StateWaitingUserAnswer: {
		Content:     "Take your time and send me your answer when you are ready.",
		MessageType: entity.MessageTypeText,
	},
	entity.StateWaitingConceptRating: {
		Content:     "How well do you understand this now? Rate it from 1 to 5.",
		MessageType: entity.MessageTypeRating,
	},
	entity.StateWaitingReasonForLowRating: {
		Content:     "Thanks for being honest. What part is still unclear to you?",
		MessageType: entity.MessageTypeText,
	},
	entity.StateWaitingNextActionAfterLearning: {
		Content:     "Great progress! Reply 1 for another question on this concept, or anything else to go back to the menu.",
		MessageType: entity.MessageTypeSelection,
	},
	entity.StateWaitingConceptInput: {
		Content:     "Which concept would you like me to explain?",
		MessageType: entity.MessageTypeText,
	},
	entity.StateWaitingKeywordForPageSearch: {
		Content:     "What keyword should I search the book for?",
		MessageType: entity.MessageTypeText,
	},
}

// ForState returns the canned response for a local state. States without
// a template (the remote ones, reached only via the generation backend)
// fall back to the feature menu so the conversation always has a way
// forward.
func ForState(state entity.ChatState) LocalResponse {
	if r, ok := templates[state]; ok {
		return r
	}
	return templates[entity.StateWaitingUserSelectFeature]
}
