package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizzed/internal/model"
	"quizzed/internal/service"
)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context, userID string) (*service.Overview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Overview), args.Error(1)
}

func (m *MockDashboardService) Analytics(ctx context.Context, userID, timeframe string) (*service.AnalyticsResult, error) {
	args := m.Called(ctx, userID, timeframe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyticsResult), args.Error(1)
}

func (m *MockDashboardService) Leaderboard(ctx context.Context, userID, topicID, timeframe string) (*service.Leaderboard, error) {
	args := m.Called(ctx, userID, topicID, timeframe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Leaderboard), args.Error(1)
}

func (m *MockDashboardService) Goals(ctx context.Context, userID string) ([]service.GoalView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.GoalView), args.Error(1)
}

func (m *MockDashboardService) SetGoals(ctx context.Context, userID string, goals []model.Goal) ([]model.Goal, error) {
	args := m.Called(ctx, userID, goals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Goal), args.Error(1)
}
