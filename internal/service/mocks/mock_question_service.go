package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizzed/internal/model"
	"quizzed/internal/repository"
	"quizzed/internal/service"
)

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) Create(ctx context.Context, authorID string, q model.Question) (*model.Question, error) {
	args := m.Called(ctx, authorID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockQuestionService) List(ctx context.Context, f repository.QuestionFilter, page, limit int) (*service.QuestionPage, error) {
	args := m.Called(ctx, f, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuestionPage), args.Error(1)
}

func (m *MockQuestionService) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
