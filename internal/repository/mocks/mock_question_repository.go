package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, q *model.Question) (*model.Question, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockQuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockQuestionRepository) FindActive(ctx context.Context, f repository.QuestionFilter) ([]model.Question, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, f repository.QuestionFilter, pq repository.PageQuery) (*repository.PageResult[model.Question], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Question]), args.Error(1)
}

func (m *MockQuestionRepository) TopicSummaries(ctx context.Context) ([]model.TopicSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TopicSummary), args.Error(1)
}

func (m *MockQuestionRepository) RecordAnswer(ctx context.Context, id string, correct bool, timeSpent int) (*model.QuestionAnalytics, error) {
	args := m.Called(ctx, id, correct, timeSpent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestionAnalytics), args.Error(1)
}

func (m *MockQuestionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
