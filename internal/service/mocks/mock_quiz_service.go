package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"quizzed/internal/service"
)

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) Topics(ctx context.Context) ([]service.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Topic), args.Error(1)
}

func (m *MockQuizService) Start(ctx context.Context, userID string, in service.StartInput) (*service.StartedQuiz, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StartedQuiz), args.Error(1)
}

func (m *MockQuizService) SubmitAnswer(ctx context.Context, userID string, in service.AnswerInput) (*service.AnswerResult, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerResult), args.Error(1)
}

func (m *MockQuizService) Complete(ctx context.Context, userID, attemptID string) (*service.CompleteResult, error) {
	args := m.Called(ctx, userID, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompleteResult), args.Error(1)
}

func (m *MockQuizService) History(ctx context.Context, userID, topicID string, page, limit int) (*service.HistoryPage, error) {
	args := m.Called(ctx, userID, topicID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryPage), args.Error(1)
}

func (m *MockQuizService) Recommendations(ctx context.Context, userID string) (*service.Recommendations, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Recommendations), args.Error(1)
}

func (m *MockQuizService) AbandonStale(ctx context.Context, grace time.Duration) (int64, error) {
	args := m.Called(ctx, grace)
	return args.Get(0).(int64), args.Error(1)
}
