package repository

import (
	"context"
	"time"

	"quizzed/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user. Unique violations surface as ErrDuplicateEmail
	// or ErrDuplicateUsername.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateProfile(ctx context.Context, id string, profile model.Profile, prefs model.Preferences) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateAvatar(ctx context.Context, id, avatar string) error
	SetGoals(ctx context.Context, id string, goals []model.Goal) error

	// RecordQuizResult folds a completed quiz into the running stats in a
	// single statement and returns the new stats.
	RecordQuizResult(ctx context.Context, id string, score int, topic string) (*model.UserStats, error)
}
