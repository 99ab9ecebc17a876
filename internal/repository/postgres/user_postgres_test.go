package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "role", "profile", "preferences",
	"total_quizzes_taken", "total_score", "average_score", "topics_studied",
	"learning_goals", "last_login", "created_at", "updated_at",
}

func userRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userRowColumns).AddRow(
		"u-1", "alice", "alice@example.com", "hash", "student",
		[]byte(`{"firstName":"Alice","avatar":"/assets/avatars/default-2.png"}`),
		[]byte(`{"favoriteTopics":["science"],"difficultyLevel":"beginner"}`),
		3, 240, 80.0, "{science,history}",
		nil, now, now, now,
	)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	u := &model.User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         model.RoleStudent,
		Profile:      model.Profile{FirstName: "Alice", Avatar: "/assets/avatars/default-2.png"},
		Preferences:  model.Preferences{FavoriteTopics: []string{"science"}, DifficultyLevel: model.LevelBeginner},
		CreatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("u-1", "alice", "alice@example.com", "hash", "student",
				`{"firstName":"Alice","lastName":"","avatar":"/assets/avatars/default-2.png","bio":""}`,
				`{"favoriteTopics":["science"],"difficultyLevel":"beginner"}`,
				now).
			WillReturnRows(userRow(now))

		got, err := repo.Create(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
		assert.Equal(t, "Alice", got.Profile.FirstName)
		assert.Equal(t, []string{"science", "history"}, got.Stats.TopicsStudied)
		assert.Equal(t, 80.0, got.Stats.AverageScore)
		assert.NotNil(t, got.LastLogin)
		assert.Nil(t, got.LearningGoals)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})

	t.Run("duplicate username", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("alice@example.com").
			WillReturnRows(userRow(time.Now()))

		u, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, []string{"science"}, u.Preferences.FavoriteTopics)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})
}

func TestUserPostgres_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.ExistsByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "bob@example.com")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("u-1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("gone", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdatePassword(ctx, "u-1", "new-hash"))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "gone", "new-hash"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_RecordQuizResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("UPDATE users SET").
		WithArgs("u-1", 90, "science").
		WillReturnRows(sqlmock.NewRows([]string{"total_quizzes_taken", "total_score", "average_score", "topics_studied"}).
			AddRow(4, 330, 82.5, "{science,history}"))

	stats, err := repo.RecordQuizResult(context.Background(), "u-1", 90, "science")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalQuizzesTaken)
	assert.Equal(t, 330, stats.TotalScore)
	assert.Equal(t, 82.5, stats.AverageScore)
	assert.Equal(t, []string{"science", "history"}, stats.TopicsStudied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_SetGoals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	goals := []model.Goal{{ID: "g1", Title: "Read", Type: "custom", Target: 5, Status: "active"}}

	mock.ExpectExec("UPDATE users SET learning_goals").
		WithArgs("u-1", `[{"id":"g1","title":"Read","type":"custom","target":5,"current":0,"status":"active"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetGoals(context.Background(), "u-1", goals))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueConstraint(t *testing.T) {
	assert.Equal(t, "users_email_key", uniqueConstraint(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}))
	assert.Equal(t, "", uniqueConstraint(&pgconn.PgError{Code: "23503", ConstraintName: "fk"}))
	assert.Equal(t, "", uniqueConstraint(sql.ErrNoRows))
}

