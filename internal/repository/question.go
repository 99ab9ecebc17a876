package repository

import (
	"context"

	"quizzed/internal/model"
)

// QuestionFilter narrows question listings. Empty fields match everything.
type QuestionFilter struct {
	Topic      string
	Difficulty string
	Status     string
}

// QuestionRepository defines data access for the question bank.
type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) (*model.Question, error)
	FindByID(ctx context.Context, id string) (*model.Question, error)

	// FindActive returns every active question carrying f.Topic, optionally
	// restricted to f.Difficulty. f.Status is ignored.
	FindActive(ctx context.Context, f QuestionFilter) ([]model.Question, error)

	List(ctx context.Context, f QuestionFilter, pq PageQuery) (*PageResult[model.Question], error)

	// TopicSummaries aggregates active questions per topic, largest topic first.
	TopicSummaries(ctx context.Context) ([]model.TopicSummary, error)

	// RecordAnswer updates the answer analytics atomically and returns them.
	RecordAnswer(ctx context.Context, id string, correct bool, timeSpent int) (*model.QuestionAnalytics, error)

	UpdateStatus(ctx context.Context, id, status string) error
}
