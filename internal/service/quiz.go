package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"quizzed/internal/analytics"
	"quizzed/internal/metrics"
	"quizzed/internal/model"
	"quizzed/internal/repository"
)

const (
	defaultQuestionCount = 10
	maxQuestionCount     = 50
	secondsPerQuestion   = 60
	topicHistorySize     = 10
	recommendationWindow = 30
)

// StartInput configures a new quiz.
type StartInput struct {
	TopicID       string
	Difficulty    string
	QuestionCount int
	DeviceInfo    string
	IPAddress     string
}

// StartedQuiz is a freshly created attempt with its questions, answers stripped.
type StartedQuiz struct {
	ID             string               `json:"id"`
	TopicID        string               `json:"topicId"`
	Questions      []model.QuizQuestion `json:"questions"`
	TimeLimit      int                  `json:"timeLimit"`
	TotalQuestions int                  `json:"totalQuestions"`
	StartedAt      time.Time            `json:"startedAt"`
}

// AnswerInput is one submitted answer.
type AnswerInput struct {
	AttemptID     string
	QuestionID    string
	SelectedIndex int
	TimeSpent     int
}

// AnswerResult is the immediate feedback for a submitted answer.
type AnswerResult struct {
	IsCorrect     bool
	CorrectAnswer int
	Explanation   string
	// SuccessRate is formatted with one decimal, e.g. "66.7".
	SuccessRate string
}

// QuizResults summarizes a completed attempt.
type QuizResults struct {
	QuizID         string    `json:"quizId"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeSpent      int       `json:"timeSpent"`
	CompletedAt    time.Time `json:"completedAt"`
	TopicID        string    `json:"topicId"`
}

// CompleteResult pairs the results with the user's updated stats.
type CompleteResult struct {
	Results   QuizResults
	UserStats model.UserStats
}

// Pagination describes a page of history.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasMore     bool `json:"hasMore"`
}

// HistoryPage is one page of completed attempts.
type HistoryPage struct {
	Quizzes    []model.QuizAttempt
	Pagination Pagination
}

// Recommendations is the learner's recent topic performance and what to study next.
type Recommendations struct {
	Recommendations  []analytics.QuizRecommendation
	TopicPerformance map[string]*analytics.TopicPerformance
}

// QuizService runs quizzes from topic selection to completion.
type QuizService interface {
	Topics(ctx context.Context) ([]Topic, error)
	Start(ctx context.Context, userID string, in StartInput) (*StartedQuiz, error)
	SubmitAnswer(ctx context.Context, userID string, in AnswerInput) (*AnswerResult, error)
	Complete(ctx context.Context, userID, attemptID string) (*CompleteResult, error)
	History(ctx context.Context, userID, topicID string, page, limit int) (*HistoryPage, error)
	Recommendations(ctx context.Context, userID string) (*Recommendations, error)

	// AbandonStale closes attempts that outlived their time limit plus grace.
	AbandonStale(ctx context.Context, grace time.Duration) (int64, error)
}

type quizService struct {
	users     repository.UserRepository
	questions repository.QuestionRepository
	attempts  repository.AttemptRepository
	tx        repository.Transactor
	metrics   *metrics.Domain
	now       func() time.Time
	newRand   func() *rand.Rand
}

// NewQuizService constructs a QuizService. m may be nil.
func NewQuizService(users repository.UserRepository, questions repository.QuestionRepository, attempts repository.AttemptRepository, tx repository.Transactor, m *metrics.Domain) QuizService {
	return &quizService{
		users:     users,
		questions: questions,
		attempts:  attempts,
		tx:        tx,
		metrics:   m,
		now:       time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (s *quizService) Topics(ctx context.Context) ([]Topic, error) {
	summaries, err := s.questions.TopicSummaries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Topic, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, topicFromSummary(sum))
	}
	return out, nil
}

func (s *quizService) Start(ctx context.Context, userID string, in StartInput) (*StartedQuiz, error) {
	if in.TopicID == "" {
		return nil, invalid("Topic is required")
	}
	if in.Difficulty != "" && !model.ValidDifficulty(in.Difficulty) {
		return nil, invalid("difficulty must be one of easy, medium, hard")
	}
	count := in.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	recent, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{
		UserID:  userID,
		TopicID: in.TopicID,
		Limit:   topicHistorySize,
		Newest:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("load topic history: %w", err)
	}

	pool, err := s.questions.FindActive(ctx, repository.QuestionFilter{Topic: in.TopicID, Difficulty: in.Difficulty})
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	selected := analytics.SelectQuestions(pool, analytics.HistoryOf(recent), count, s.newRand())
	if len(selected) == 0 {
		return nil, ErrNoQuestions
	}

	ids := make([]string, 0, len(selected))
	for i := range selected {
		ids = append(ids, selected[i].ID)
	}

	attempt, err := s.attempts.Create(ctx, &model.QuizAttempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		TopicID:   in.TopicID,
		Questions: ids,
		Answers:   []model.Answer{},
		TimeLimit: count * secondsPerQuestion,
		StartedAt: s.now().UTC(),
		Status:    model.AttemptInProgress,
		Metadata: model.AttemptMetadata{
			Difficulty:    in.Difficulty,
			QuestionCount: count,
			DeviceInfo:    in.DeviceInfo,
			IPAddress:     in.IPAddress,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	clean := make([]model.QuizQuestion, 0, len(selected))
	for i := range selected {
		clean = append(clean, selected[i].ForQuiz())
	}
	return &StartedQuiz{
		ID:             attempt.ID,
		TopicID:        attempt.TopicID,
		Questions:      clean,
		TimeLimit:      attempt.TimeLimit,
		TotalQuestions: len(clean),
		StartedAt:      attempt.StartedAt,
	}, nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, userID string, in AnswerInput) (*AnswerResult, error) {
	if in.AttemptID == "" || in.QuestionID == "" {
		return nil, invalid("quizAttemptId and questionId are required")
	}
	if in.TimeSpent < 0 {
		return nil, invalid("timeSpent must not be negative")
	}

	attempt, err := s.findAttempt(ctx, in.AttemptID, userID)
	if err != nil {
		return nil, err
	}
	if !validID(in.QuestionID) {
		return nil, ErrQuestionNotFound
	}
	q, err := s.questions.FindByID(ctx, in.QuestionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if !attempt.HasQuestion(q.ID) {
		return nil, ErrQuestionNotInQuiz
	}

	correct := q.IsCorrect(in.SelectedIndex)
	stats, err := s.questions.RecordAnswer(ctx, q.ID, correct, in.TimeSpent)
	if err != nil {
		return nil, fmt.Errorf("record question analytics: %w", err)
	}

	attempt.UpsertAnswer(model.Answer{
		QuestionID:    q.ID,
		SelectedIndex: in.SelectedIndex,
		IsCorrect:     correct,
		TimeSpent:     in.TimeSpent,
		SubmittedAt:   s.now().UTC(),
	})
	if err := s.attempts.SaveAnswers(ctx, attempt.ID, attempt.Answers); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("save answers: %w", err)
	}

	return &AnswerResult{
		IsCorrect:     correct,
		CorrectAnswer: q.CorrectIndex(),
		Explanation:   q.Explanation,
		SuccessRate:   fmt.Sprintf("%.1f", stats.SuccessRate()),
	}, nil
}

func (s *quizService) Complete(ctx context.Context, userID, attemptID string) (*CompleteResult, error) {
	if attemptID == "" {
		return nil, invalid("quizAttemptId is required")
	}
	attempt, err := s.findAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}

	score := attempt.FinalScore()
	spent := attempt.AnsweredTime()
	at := s.now().UTC()
	var stats *model.UserStats
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.attempts.Complete(ctx, attempt.ID, score, spent, at); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAttemptNotFound
			}
			return fmt.Errorf("complete attempt: %w", err)
		}
		updated, err := s.users.RecordQuizResult(ctx, userID, score, attempt.TopicID)
		if err != nil {
			return fmt.Errorf("update user stats: %w", err)
		}
		stats = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.QuizCompleted(attempt.TopicID)

	return &CompleteResult{
		Results: QuizResults{
			QuizID:         attempt.ID,
			Score:          score,
			CorrectAnswers: attempt.CorrectCount(),
			TotalQuestions: len(attempt.Questions),
			TimeSpent:      spent,
			CompletedAt:    at,
			TopicID:        attempt.TopicID,
		},
		UserStats: *stats,
	}, nil
}

func (s *quizService) History(ctx context.Context, userID, topicID string, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	res, err := s.attempts.CompletedPage(ctx, userID, topicID, repository.PageQuery{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &HistoryPage{
		Quizzes: res.Items,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(res.Total) / float64(limit))),
			Total:       res.Total,
			HasMore:     page*limit < res.Total,
		},
	}, nil
}

func (s *quizService) Recommendations(ctx context.Context, userID string) (*Recommendations, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	recent, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{
		UserID: userID,
		Since:  analytics.Since(s.now(), recommendationWindow),
	})
	if err != nil {
		return nil, err
	}

	order, perf := analytics.TopicPerformances(recent)
	return &Recommendations{
		Recommendations:  analytics.QuizRecommendations(order, perf, u.Stats.TopicsStudied),
		TopicPerformance: perf,
	}, nil
}

func (s *quizService) AbandonStale(ctx context.Context, grace time.Duration) (int64, error) {
	return s.attempts.AbandonStale(ctx, s.now().UTC(), grace)
}

func (s *quizService) findAttempt(ctx context.Context, id, userID string) (*model.QuizAttempt, error) {
	if !validID(id) {
		return nil, ErrAttemptNotFound
	}
	a, err := s.attempts.FindInProgress(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return a, nil
}
