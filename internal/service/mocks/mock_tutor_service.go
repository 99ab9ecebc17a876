package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizzed/internal/service"
)

type MockTutorService struct {
	mock.Mock
}

func (m *MockTutorService) Explain(ctx context.Context, userID string, in service.ExplanationInput) (*service.Explanation, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Explanation), args.Error(1)
}

func (m *MockTutorService) Hint(ctx context.Context, questionID string, attempt int) (*service.Hint, error) {
	args := m.Called(ctx, questionID, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Hint), args.Error(1)
}

func (m *MockTutorService) StudyPlan(ctx context.Context, userID string, in service.StudyPlanInput) (*service.StudyPlanResult, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StudyPlanResult), args.Error(1)
}

func (m *MockTutorService) QuestionSuggestions(ctx context.Context, userID, topicID string, count int) (*service.Suggestions, error) {
	args := m.Called(ctx, userID, topicID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Suggestions), args.Error(1)
}
