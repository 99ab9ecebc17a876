package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, a *model.QuizAttempt) (*model.QuizAttempt, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) FindInProgress(ctx context.Context, id, userID string) (*model.QuizAttempt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) SaveAnswers(ctx context.Context, id string, answers []model.Answer) error {
	args := m.Called(ctx, id, answers)
	return args.Error(0)
}

func (m *MockAttemptRepository) Complete(ctx context.Context, id string, score, timeSpent int, at time.Time) error {
	args := m.Called(ctx, id, score, timeSpent, at)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListCompleted(ctx context.Context, f repository.AttemptFilter) ([]model.QuizAttempt, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CompletedPage(ctx context.Context, userID, topicID string, pq repository.PageQuery) (*repository.PageResult[model.QuizAttempt], error) {
	args := m.Called(ctx, userID, topicID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.QuizAttempt]), args.Error(1)
}

func (m *MockAttemptRepository) Leaderboard(ctx context.Context, q repository.LeaderboardQuery) ([]model.LeaderboardEntry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Error(1)
}

func (m *MockAttemptRepository) AbandonStale(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	args := m.Called(ctx, now, grace)
	return args.Get(0).(int64), args.Error(1)
}
