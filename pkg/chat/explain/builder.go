// Package explain assembles the concept-explanation request sent to the
// generation backend. The buildup is a pure projection over the stored
// transcript and the latest question record; it performs no I/O.
package explain

import (
	"errors"
	"time"

	"ai-booktutor-be/internal/entity"
	"ai-booktutor-be/pkg/chat/flow"
)

// ErrNoQuestionRecord is returned when an explanation is requested for a
// conversation that never produced a question.
var ErrNoQuestionRecord = errors.New("no question record exists for this conversation")

type UserProfile struct {
	UserId             string `json:"user_id"`
	Age                *int   `json:"age"`
	LearningExperience string `json:"learning_experience"`
}

type ProblemInfo struct {
	Domain        string `json:"domain"`
	Concept       string `json:"concept"`
	ProblemText   string `json:"problem_text"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
}

// Attempt is one prior explanation paired with the rating it received
// and, for low ratings, the user's stated reason.
type Attempt struct {
	Explanation string `json:"explanation"`
	Rating      int    `json:"rating"`
	Feedback    string `json:"feedback,omitempty"`
}

type Request struct {
	UserProfile              UserProfile `json:"user_profile"`
	ProblemInfo              ProblemInfo `json:"problem_info"`
	LowUnderstandingAttempts []Attempt   `json:"low_understanding_attempts"`
	BestAttempt              *Attempt    `json:"best_attempt"`
}

// Build projects the conversation into an explanation request. Turns must
// be in ascending creation order. A missing question record is an error:
// without it there is no concept to explain.
func Build(user *entity.User, record *entity.QuestionRecord, turns []*entity.ChatTurn, now time.Time) (*Request, error) {
	if record == nil {
		return nil, ErrNoQuestionRecord
	}

	req := &Request{
		UserProfile: UserProfile{
			UserId: user.Id.String(),
			Age:    user.Age(now),
		},
		ProblemInfo: ProblemInfo{
			Domain:        record.Domain,
			Concept:       record.Concept,
			ProblemText:   record.ProblemText,
			CorrectAnswer: record.CorrectAnswer,
			UserAnswer:    latestAnswer(record, turns),
		},
		LowUnderstandingAttempts: []Attempt{},
	}
	if user.Job != nil {
		req.UserProfile.LearningExperience = *user.Job
	}

	attempts := collectAttempts(turns)
	for _, a := range attempts {
		if a.Rating < flow.UnderstoodRatingThreshold {
			req.LowUnderstandingAttempts = append(req.LowUnderstandingAttempts, a)
		}
	}
	req.BestAttempt = bestAttempt(attempts)

	return req, nil
}

// latestAnswer prefers the answer captured on the question record and
// falls back to the newest user turn submitted in an answer state.
func latestAnswer(record *entity.QuestionRecord, turns []*entity.ChatTurn) string {
	if record.UserAnswer != nil {
		return *record.UserAnswer
	}
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Sender != entity.SenderUser {
			continue
		}
		switch t.StateOrInitial() {
		case entity.StateWaitingUserAnswer, entity.StateGeneratingAdditionalQuestion:
			return t.Content
		}
	}
	return ""
}

func isExplanationTurn(t *entity.ChatTurn) bool {
	if t.Sender != entity.SenderAI {
		return false
	}
	switch t.StateOrInitial() {
	case entity.StatePresentingConceptExplanation, entity.StateReexplainingConcept:
		return true
	}
	return false
}

// collectAttempts pairs every AI explanation turn with the first user
// rating that follows it, and for low ratings the reason given after.
// Explanations the user never rated are skipped.
func collectAttempts(turns []*entity.ChatTurn) []Attempt {
	var attempts []Attempt

	for i, t := range turns {
		if !isExplanationTurn(t) {
			continue
		}

		rating, ratingAt, ok := firstRatingAfter(turns, i)
		if !ok {
			continue
		}

		attempt := Attempt{Explanation: t.Content, Rating: rating}
		if rating < flow.UnderstoodRatingThreshold {
			attempt.Feedback = firstReasonAfter(turns, ratingAt)
		}
		attempts = append(attempts, attempt)
	}

	return attempts
}

func firstRatingAfter(turns []*entity.ChatTurn, from int) (int, int, bool) {
	for i := from + 1; i < len(turns); i++ {
		t := turns[i]
		if t.Sender != entity.SenderUser || t.StateOrInitial() != entity.StateWaitingConceptRating {
			continue
		}
		if rating, ok := flow.ParseRating(t.Content); ok {
			return rating, i, true
		}
	}
	return 0, 0, false
}

func firstReasonAfter(turns []*entity.ChatTurn, from int) string {
	for i := from + 1; i < len(turns); i++ {
		t := turns[i]
		if t.Sender == entity.SenderUser && t.StateOrInitial() == entity.StateWaitingReasonForLowRating {
			return t.Content
		}
	}
	return ""
}

// bestAttempt returns the newest explanation rated as understood.
func bestAttempt(attempts []Attempt) *Attempt {
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].Rating >= flow.UnderstoodRatingThreshold {
			a := attempts[i]
			a.Feedback = ""
			return &a
		}
	}
	return nil
}
