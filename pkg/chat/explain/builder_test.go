package explain

import (
	"testing"
	"time"

	"ai-booktutor-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testUserId = uuid.New()
	testBookId = uuid.New()
)

func testUser() *entity.User {
	birth := time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC)
	job := "high school student"
	return &entity.User{
		Id:        testUserId,
		Email:     "learner@example.com",
		BirthDate: &birth,
		Job:       &job,
	}
}

func testRecord() *entity.QuestionRecord {
	answer := "O(n log n)"
	return &entity.QuestionRecord{
		Id:            uuid.New(),
		UserId:        testUserId,
		BookId:        testBookId,
		Domain:        "algorithms",
		Concept:       "merge sort",
		ProblemText:   "What is the time complexity of merge sort?",
		CorrectAnswer: "O(n log n)",
		UserAnswer:    &answer,
	}
}

func turn(sender entity.Sender, content string, state entity.ChatState, at time.Time) *entity.ChatTurn {
	return &entity.ChatTurn{
		Id:        uuid.New(),
		UserId:    testUserId,
		BookId:    testBookId,
		Sender:    sender,
		Content:   content,
		ChatState: &state,
		CreatedAt: at,
	}
}

func TestBuildRequiresQuestionRecord(t *testing.T) {
	_, err := Build(testUser(), nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrNoQuestionRecord)
}

func TestBuildUserProfile(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	req, err := Build(testUser(), testRecord(), nil, now)
	require.NoError(t, err)

	assert.Equal(t, testUserId.String(), req.UserProfile.UserId)
	require.NotNil(t, req.UserProfile.Age)
	assert.Equal(t, 26, *req.UserProfile.Age)
	assert.Equal(t, "high school student", req.UserProfile.LearningExperience)
}

func TestBuildAgeNilWithoutBirthDate(t *testing.T) {
	user := testUser()
	user.BirthDate = nil

	req, err := Build(user, testRecord(), nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, req.UserProfile.Age)
}

func TestBuildProblemInfoPrefersRecordedAnswer(t *testing.T) {
	req, err := Build(testUser(), testRecord(), nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "algorithms", req.ProblemInfo.Domain)
	assert.Equal(t, "merge sort", req.ProblemInfo.Concept)
	assert.Equal(t, "O(n log n)", req.ProblemInfo.UserAnswer)
}

func TestBuildProblemInfoFallsBackToAnswerTurn(t *testing.T) {
	record := testRecord()
	record.UserAnswer = nil

	base := time.Now()
	turns := []*entity.ChatTurn{
		turn(entity.SenderUser, "first guess", entity.StateWaitingUserAnswer, base),
		turn(entity.SenderUser, "later guess", entity.StateWaitingUserAnswer, base.Add(time.Minute)),
	}

	req, err := Build(testUser(), record, turns, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "later guess", req.ProblemInfo.UserAnswer)
}

func TestBuildCollectsLowUnderstandingAttempts(t *testing.T) {
	base := time.Now()
	turns := []*entity.ChatTurn{
		turn(entity.SenderAI, "explanation one", entity.StatePresentingConceptExplanation, base),
		turn(entity.SenderUser, "2", entity.StateWaitingConceptRating, base.Add(1*time.Minute)),
		turn(entity.SenderUser, "lost at the merge step", entity.StateWaitingReasonForLowRating, base.Add(2*time.Minute)),
		turn(entity.SenderAI, "explanation two", entity.StateReexplainingConcept, base.Add(3*time.Minute)),
		turn(entity.SenderUser, "5", entity.StateWaitingConceptRating, base.Add(4*time.Minute)),
	}

	req, err := Build(testUser(), testRecord(), turns, time.Now())
	require.NoError(t, err)

	require.Len(t, req.LowUnderstandingAttempts, 1)
	assert.Equal(t, "explanation one", req.LowUnderstandingAttempts[0].Explanation)
	assert.Equal(t, 2, req.LowUnderstandingAttempts[0].Rating)
	assert.Equal(t, "lost at the merge step", req.LowUnderstandingAttempts[0].Feedback)

	require.NotNil(t, req.BestAttempt)
	assert.Equal(t, "explanation two", req.BestAttempt.Explanation)
	assert.Equal(t, 5, req.BestAttempt.Rating)
	assert.Empty(t, req.BestAttempt.Feedback)
}

func TestBuildBestAttemptIsNewestUnderstood(t *testing.T) {
	base := time.Now()
	turns := []*entity.ChatTurn{
		turn(entity.SenderAI, "old good explanation", entity.StatePresentingConceptExplanation, base),
		turn(entity.SenderUser, "4", entity.StateWaitingConceptRating, base.Add(1*time.Minute)),
		turn(entity.SenderAI, "newer good explanation", entity.StateReexplainingConcept, base.Add(2*time.Minute)),
		turn(entity.SenderUser, "5", entity.StateWaitingConceptRating, base.Add(3*time.Minute)),
	}

	req, err := Build(testUser(), testRecord(), turns, time.Now())
	require.NoError(t, err)

	require.NotNil(t, req.BestAttempt)
	assert.Equal(t, "newer good explanation", req.BestAttempt.Explanation)
}

func TestBuildSkipsUnratedExplanations(t *testing.T) {
	base := time.Now()
	turns := []*entity.ChatTurn{
		turn(entity.SenderAI, "never rated", entity.StatePresentingConceptExplanation, base),
	}

	req, err := Build(testUser(), testRecord(), turns, time.Now())
	require.NoError(t, err)

	assert.Empty(t, req.LowUnderstandingAttempts)
	assert.Nil(t, req.BestAttempt)
}

func TestBuildIgnoresUnparseableRatings(t *testing.T) {
	base := time.Now()
	turns := []*entity.ChatTurn{
		turn(entity.SenderAI, "explained", entity.StatePresentingConceptExplanation, base),
		turn(entity.SenderUser, "dunno", entity.StateWaitingConceptRating, base.Add(1*time.Minute)),
		turn(entity.SenderUser, "3", entity.StateWaitingConceptRating, base.Add(2*time.Minute)),
		turn(entity.SenderUser, "still the merge step", entity.StateWaitingReasonForLowRating, base.Add(3*time.Minute)),
	}

	req, err := Build(testUser(), testRecord(), turns, time.Now())
	require.NoError(t, err)

	require.Len(t, req.LowUnderstandingAttempts, 1)
	assert.Equal(t, 3, req.LowUnderstandingAttempts[0].Rating)
	assert.Equal(t, "still the merge step", req.LowUnderstandingAttempts[0].Feedback)
}
