package repository

import (
	"context"
	"time"

	"quizzed/internal/model"
)

// AttemptFilter selects a user's completed attempts.
type AttemptFilter struct {
	UserID  string
	TopicID string
	// Since drops attempts completed before it when non-zero.
	Since time.Time
	// Limit caps the result when positive.
	Limit int
	// Newest orders by completion time descending instead of ascending.
	Newest bool
}

// LeaderboardQuery scopes the leaderboard aggregation.
type LeaderboardQuery struct {
	TopicID string
	Since   time.Time
}

// AttemptRepository defines data access for quiz attempts.
type AttemptRepository interface {
	Create(ctx context.Context, a *model.QuizAttempt) (*model.QuizAttempt, error)

	// FindInProgress returns the attempt only if it belongs to userID and is
	// still in progress.
	FindInProgress(ctx context.Context, id, userID string) (*model.QuizAttempt, error)

	SaveAnswers(ctx context.Context, id string, answers []model.Answer) error

	// Complete marks an in-progress attempt completed. It returns sql.ErrNoRows
	// when the attempt is no longer in progress.
	Complete(ctx context.Context, id string, score, timeSpent int, at time.Time) error

	ListCompleted(ctx context.Context, f AttemptFilter) ([]model.QuizAttempt, error)
	CompletedPage(ctx context.Context, userID, topicID string, pq PageQuery) (*PageResult[model.QuizAttempt], error)

	// Leaderboard ranks every participant in the window by average score,
	// then by quiz count.
	Leaderboard(ctx context.Context, q LeaderboardQuery) ([]model.LeaderboardEntry, error)

	// AbandonStale marks in-progress attempts whose time limit plus grace
	// elapsed before now as abandoned and returns how many changed.
	AbandonStale(ctx context.Context, now time.Time, grace time.Duration) (int64, error)
}
