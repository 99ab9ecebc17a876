package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

const userColumns = `id, username, email, password_hash, role, profile, preferences,
		total_quizzes_taken, total_score, average_score, topics_studied,
		learning_goals, last_login, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var profile, prefs, goals []byte
	var lastLogin sql.NullTime
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&profile,
		&prefs,
		&u.Stats.TotalQuizzesTaken,
		&u.Stats.TotalScore,
		&u.Stats.AverageScore,
		pq.Array(&u.Stats.TopicsStudied),
		&goals,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := fromJSON(profile, &u.Profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := fromJSON(prefs, &u.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if err := fromJSON(goals, &u.LearningGoals); err != nil {
		return nil, fmt.Errorf("decode learning goals: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	u.Stats.TopicsStudied = nonNil(u.Stats.TopicsStudied)
	u.Preferences.FavoriteTopics = nonNil(u.Preferences.FavoriteTopics)
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	profile, err := toJSON(u.Profile)
	if err != nil {
		return nil, err
	}
	prefs, err := toJSON(u.Preferences)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO users (id, username, email, password_hash, role, profile, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + userColumns
	row := conn(ctx, r.db).QueryRowContext(ctx, q,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Role,
		profile,
		prefs,
		u.CreatedAt,
	)
	out, err := scanUser(row)
	if err != nil {
		switch uniqueConstraint(err) {
		case "users_email_key":
			return nil, repository.ErrDuplicateEmail
		case "users_username_key":
			return nil, repository.ErrDuplicateUsername
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email. Emails are stored lowercased.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserPostgres) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserPostgres) exists(ctx context.Context, q string, arg string) (bool, error) {
	var ok bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *UserPostgres) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE users SET last_login = $2 WHERE id = $1`
	return execOne(ctx, r.db, q, id, at)
}

// UpdateProfile replaces the profile and preferences documents.
func (r *UserPostgres) UpdateProfile(ctx context.Context, id string, profile model.Profile, prefs model.Preferences) (*model.User, error) {
	p, err := toJSON(profile)
	if err != nil {
		return nil, err
	}
	pr, err := toJSON(prefs)
	if err != nil {
		return nil, err
	}
	q := `
		UPDATE users SET profile = $2, preferences = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, q, id, p, pr))
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return execOne(ctx, r.db, q, id, hash)
}

// UpdateAvatar sets profile.avatar without touching the other profile fields.
func (r *UserPostgres) UpdateAvatar(ctx context.Context, id, avatar string) error {
	const q = `
		UPDATE users SET profile = jsonb_set(profile, '{avatar}', to_jsonb($2::text)), updated_at = now()
		WHERE id = $1`
	return execOne(ctx, r.db, q, id, avatar)
}

func (r *UserPostgres) SetGoals(ctx context.Context, id string, goals []model.Goal) error {
	g, err := toJSON(goals)
	if err != nil {
		return err
	}
	const q = `UPDATE users SET learning_goals = $2, updated_at = now() WHERE id = $1`
	return execOne(ctx, r.db, q, id, g)
}

// RecordQuizResult increments the running totals. The right-hand sides see
// the pre-update row, so the average uses the new totals explicitly.
func (r *UserPostgres) RecordQuizResult(ctx context.Context, id string, score int, topic string) (*model.UserStats, error) {
	const q = `
		UPDATE users SET
			total_quizzes_taken = total_quizzes_taken + 1,
			total_score         = total_score + $2,
			average_score       = (total_score + $2)::double precision / (total_quizzes_taken + 1),
			topics_studied      = CASE WHEN $3 = ANY(topics_studied) THEN topics_studied
			                           ELSE array_append(topics_studied, $3) END,
			updated_at          = now()
		WHERE id = $1
		RETURNING total_quizzes_taken, total_score, average_score, topics_studied
	`
	var s model.UserStats
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id, score, topic).Scan(
		&s.TotalQuizzesTaken,
		&s.TotalScore,
		&s.AverageScore,
		pq.Array(&s.TopicsStudied),
	); err != nil {
		return nil, err
	}
	s.TopicsStudied = nonNil(s.TopicsStudied)
	return &s, nil
}
