package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzed/internal/llm"
	"quizzed/internal/model"
	"quizzed/internal/repository"
	repoMocks "quizzed/internal/repository/mocks"
)

type fakeCompleter struct {
	enabled bool
	out     string
	err     error

	system string
	prompt string
	opt    llm.Options
	calls  int
}

func (f *fakeCompleter) Enabled() bool { return f.enabled }

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string, opt llm.Options) (string, error) {
	f.calls++
	f.system, f.prompt, f.opt = system, prompt, opt
	return f.out, f.err
}

func newTestTutor(c Completer) (*tutorService, quizMocks) {
	m := quizMocks{
		users:     new(repoMocks.MockUserRepository),
		questions: new(repoMocks.MockQuestionRepository),
		attempts:  new(repoMocks.MockAttemptRepository),
	}
	svc := NewTutorService(m.users, m.questions, m.attempts, c, nil, nil).(*tutorService)
	svc.now = func() time.Time { return testNow }
	svc.newRand = func() *rand.Rand { return rand.New(rand.NewSource(7)) }
	return svc, m
}

func TestTutorService_Explain(t *testing.T) {
	ctx := context.Background()
	q := question(testQuestionID, "medium", 1)
	q.QuestionText = "Pick B"
	answer := 1

	profileMocks := func(m quizMocks) {
		m.questions.On("FindByID", ctx, testQuestionID).Return(&q, nil)
		m.users.On("FindByID", ctx, "u1").Return(&model.User{
			ID:          "u1",
			Username:    "alice",
			Preferences: model.Preferences{FavoriteTopics: []string{"math", "art"}, DifficultyLevel: "intermediate"},
			Stats:       model.UserStats{AverageScore: 72.25, TotalQuizzesTaken: 4},
		}, nil)
		m.attempts.On("ListCompleted", ctx, repository.AttemptFilter{UserID: "u1", Newest: true}).Return([]model.QuizAttempt{
			completed(testAttemptID, "math", 40, 100, testNow),
		}, nil)
	}

	t.Run("llm explanation", func(t *testing.T) {
		c := &fakeCompleter{enabled: true, out: "Nice work, alice!"}
		svc, m := newTestTutor(c)
		profileMocks(m)

		exp, err := svc.Explain(ctx, "u1", ExplanationInput{QuestionID: testQuestionID, UserAnswer: &answer, IsCorrect: true, TimeSpent: 42})
		require.NoError(t, err)
		assert.Equal(t, "Nice work, alice!", exp.Text)
		assert.False(t, exp.Metadata.Fallback)
		assert.Equal(t, "alice", exp.Metadata.PersonalizedFor)
		assert.Equal(t, "math", exp.Metadata.QuestionTopic)

		assert.Equal(t, tutorSystemPrompt, c.system)
		assert.Equal(t, llm.Options{MaxTokens: 200, Temperature: 0.7}, c.opt)
		assert.Contains(t, c.prompt, `- Student's Answer: "B"`)
		assert.Contains(t, c.prompt, `- Correct Answer: "B"`)
		assert.Contains(t, c.prompt, "- Result: Correct")
		assert.Contains(t, c.prompt, "- Learning Style: quick")
		assert.Contains(t, c.prompt, "- Knowledge Gaps: math")
		assert.Contains(t, c.prompt, "- Time Spent: 42 seconds")
		assert.Contains(t, c.prompt, "1. Congratulates the student and reinforces learning")
		m.assert(t)
	})

	t.Run("llm disabled falls back", func(t *testing.T) {
		c := &fakeCompleter{}
		svc, m := newTestTutor(c)
		profileMocks(m)

		exp, err := svc.Explain(ctx, "u1", ExplanationInput{QuestionID: testQuestionID, IsCorrect: true})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(exp.Text, "🎉 Great job! because"))
		assert.Contains(t, exp.Text, "Keep up the excellent work!")
		assert.True(t, exp.Metadata.Fallback)
		assert.Equal(t, "AI service unavailable", exp.Metadata.Reason)
		assert.Equal(t, 0, c.calls)
	})

	t.Run("llm failure falls back", func(t *testing.T) {
		c := &fakeCompleter{enabled: true, err: &llm.CallError{Reason: "status 502", Status: 502}}
		svc, m := newTestTutor(c)
		profileMocks(m)

		exp, err := svc.Explain(ctx, "u1", ExplanationInput{QuestionID: testQuestionID, IsCorrect: false})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(exp.Text, "📚 Good attempt! because"))
		assert.True(t, exp.Metadata.Fallback)
		assert.Contains(t, c.prompt, `- Student's Answer: "No answer"`)
	})

	t.Run("profile failure falls back", func(t *testing.T) {
		c := &fakeCompleter{enabled: true}
		svc, m := newTestTutor(c)
		m.questions.On("FindByID", ctx, testQuestionID).Return(&q, nil)
		m.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
		m.attempts.On("ListCompleted", ctx, repository.AttemptFilter{UserID: "u1", Newest: true}).Return(nil, errors.New("db fail"))

		exp, err := svc.Explain(ctx, "u1", ExplanationInput{QuestionID: testQuestionID})
		require.NoError(t, err)
		assert.True(t, exp.Metadata.Fallback)
		assert.Equal(t, 0, c.calls)
	})

	t.Run("question required", func(t *testing.T) {
		svc, _ := newTestTutor(nil)
		_, err := svc.Explain(ctx, "u1", ExplanationInput{})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Question ID is required", ve.Msg)
	})

	t.Run("question not found", func(t *testing.T) {
		svc, m := newTestTutor(nil)
		m.questions.On("FindByID", ctx, unknownID).Return(nil, sql.ErrNoRows)
		_, err := svc.Explain(ctx, "u1", ExplanationInput{QuestionID: unknownID})
		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})

	t.Run("malformed question id", func(t *testing.T) {
		svc, m := newTestTutor(nil)
		_, err := svc.Explain(ctx, "u1", ExplanationInput{QuestionID: "42; DROP"})
		assert.ErrorIs(t, err, ErrQuestionNotFound)
		m.questions.AssertNotCalled(t, "FindByID", ctx, "42; DROP")
	})
}

func TestTutorService_Hint(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestTutor(nil)
	q := question(testQuestionID, "easy", 0)
	m.questions.On("FindByID", ctx, testQuestionID).Return(&q, nil)
	m.questions.On("FindByID", ctx, unknownID).Return(nil, sql.ErrNoRows)

	tests := []struct {
		attempt int
		want    string
	}{
		{1, progressiveHints[1]},
		{2, progressiveHints[2]},
		{3, progressiveHints[3]},
		{4, defaultHint},
		{0, defaultHint},
	}
	for _, tt := range tests {
		h, err := svc.Hint(ctx, testQuestionID, tt.attempt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, h.Hint)
		assert.Equal(t, tt.attempt, h.HintLevel)
		assert.Equal(t, 3, h.MaxHints)
	}

	_, err := svc.Hint(ctx, unknownID, 1)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = svc.Hint(ctx, "not-a-uuid", 1)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	m.questions.AssertNotCalled(t, "FindByID", ctx, "not-a-uuid")
}

func TestTutorService_StudyPlan(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestTutor(nil)

	m.users.On("FindByID", ctx, "u1").Return(&model.User{
		ID:          "u1",
		Preferences: model.Preferences{DifficultyLevel: model.LevelAdvanced},
	}, nil)
	m.attempts.On("ListCompleted", ctx, repository.AttemptFilter{UserID: "u1"}).Return([]model.QuizAttempt{
		completed(testAttemptID, "math", 80, 60, testNow),
		completed("a2", "math", 90, 60, testNow),
		completed("a3", "science", 50, 60, testNow),
	}, nil)

	res, err := svc.StudyPlan(ctx, "u1", StudyPlanInput{
		Topics:        []string{"math", "science", "history"},
		TimeAvailable: 10,
		Goals:         []string{"pass the exam"},
	})
	require.NoError(t, err)

	assert.Equal(t, 40.0, res.StudyPlan.EstimatedHours)
	assert.Equal(t, "4 weeks", res.StudyPlan.Duration)
	assert.Contains(t, res.StudyPlan.Plan, "- Focus on: math, science\n- Time: 6 hours/week")
	assert.Contains(t, res.StudyPlan.Plan, "- Focus on: history\n- Time: 8 hours/week")
	assert.Contains(t, res.StudyPlan.Plan, "- pass the exam")

	assert.Equal(t, []string{"math"}, res.LearningProfile.StrongAreas)
	assert.Equal(t, []string{"science", "history"}, res.LearningProfile.ImprovementAreas)
	assert.Equal(t, "hard", res.LearningProfile.PreferredDifficulty)
	assert.Equal(t, 20, res.LearningProfile.AverageSessionTime)
	m.assert(t)

	_, err = svc.StudyPlan(ctx, "u1", StudyPlanInput{TimeAvailable: 5})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestTutorService_QuestionSuggestions(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestTutor(nil)

	m.questions.On("FindActive", ctx, repository.QuestionFilter{Topic: "math"}).Return([]model.Question{
		question(testQuestionID, "easy", 0), question("q2", "medium", 0), question("q3", "hard", 0),
	}, nil)
	m.attempts.On("ListCompleted", ctx, repository.AttemptFilter{UserID: "u1", Newest: true}).
		Return([]model.QuizAttempt{completed(testAttemptID, "science", 90, 60, testNow)}, nil)

	res, err := svc.QuestionSuggestions(ctx, "u1", "math", 0)
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 3)
	for _, s := range res.Suggestions {
		assert.Equal(t, 60, s.EstimatedTime)
	}
	assert.Equal(t, []string{"math"}, res.TargetedWeakAreas)
	m.assert(t)

	_, err = svc.QuestionSuggestions(ctx, "u1", "", 5)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
