package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

const attemptColumns = `id, user_id, topic_id, question_ids, answers, score, time_limit, time_spent,
		started_at, completed_at, status, metadata, created_at, updated_at`

// AttemptPostgres is a PostgreSQL implementation of repository.AttemptRepository.
type AttemptPostgres struct {
	db *sql.DB
}

// NewAttemptPostgres creates a new AttemptPostgres repository.
func NewAttemptPostgres(db *sql.DB) *AttemptPostgres {
	return &AttemptPostgres{db: db}
}

var _ repository.AttemptRepository = (*AttemptPostgres)(nil)

func scanAttempt(row rowScanner) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	var answers, metadata []byte
	var score sql.NullInt64
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.TopicID,
		pq.Array(&a.Questions),
		&answers,
		&score,
		&a.TimeLimit,
		&a.TimeSpent,
		&a.StartedAt,
		&completedAt,
		&a.Status,
		&metadata,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := fromJSON(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := fromJSON(metadata, &a.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if score.Valid {
		s := int(score.Int64)
		a.Score = &s
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	a.Questions = nonNil(a.Questions)
	if a.Answers == nil {
		a.Answers = []model.Answer{}
	}
	return &a, nil
}

func scanAttempts(rows *sql.Rows) ([]model.QuizAttempt, error) {
	defer rows.Close()
	items := make([]model.QuizAttempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new attempt and returns the stored record.
func (r *AttemptPostgres) Create(ctx context.Context, a *model.QuizAttempt) (*model.QuizAttempt, error) {
	initial := a.Answers
	if initial == nil {
		initial = []model.Answer{}
	}
	answers, err := toJSON(initial)
	if err != nil {
		return nil, err
	}
	metadata, err := toJSON(a.Metadata)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO quiz_attempts (id, user_id, topic_id, question_ids, answers, time_limit, started_at, status, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $7, $7)
		RETURNING ` + attemptColumns
	row := conn(ctx, r.db).QueryRowContext(ctx, q,
		a.ID,
		a.UserID,
		a.TopicID,
		pq.Array(nonNil(a.Questions)),
		answers,
		a.TimeLimit,
		a.StartedAt,
		a.Status,
		metadata,
	)
	return scanAttempt(row)
}

func (r *AttemptPostgres) FindInProgress(ctx context.Context, id, userID string) (*model.QuizAttempt, error) {
	q := `SELECT ` + attemptColumns + ` FROM quiz_attempts
		WHERE id = $1 AND user_id = $2 AND status = 'in-progress'`
	return scanAttempt(conn(ctx, r.db).QueryRowContext(ctx, q, id, userID))
}

func (r *AttemptPostgres) SaveAnswers(ctx context.Context, id string, answers []model.Answer) error {
	a, err := toJSON(answers)
	if err != nil {
		return err
	}
	const q = `UPDATE quiz_attempts SET answers = $2, updated_at = now()
		WHERE id = $1 AND status = 'in-progress'`
	return execOne(ctx, r.db, q, id, a)
}

func (r *AttemptPostgres) Complete(ctx context.Context, id string, score, timeSpent int, at time.Time) error {
	const q = `
		UPDATE quiz_attempts
		SET status = 'completed', score = $2, time_spent = $3, completed_at = $4, updated_at = now()
		WHERE id = $1 AND status = 'in-progress'`
	return execOne(ctx, r.db, q, id, score, timeSpent, at)
}

// ListCompleted returns the user's completed attempts ordered by completion time.
func (r *AttemptPostgres) ListCompleted(ctx context.Context, f repository.AttemptFilter) ([]model.QuizAttempt, error) {
	args := []any{f.UserID}
	conds := []string{"user_id = $1", "status = 'completed'"}
	if f.TopicID != "" {
		args = append(args, f.TopicID)
		conds = append(conds, fmt.Sprintf("topic_id = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		conds = append(conds, fmt.Sprintf("completed_at >= $%d", len(args)))
	}
	order := "ASC"
	if f.Newest {
		order = "DESC"
	}
	q := fmt.Sprintf(`SELECT %s FROM quiz_attempts WHERE %s ORDER BY completed_at %s, id %s`,
		attemptColumns, strings.Join(conds, " AND "), order, order)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanAttempts(rows)
}

// CompletedPage returns one page of completed attempts, newest first, and a total count.
func (r *AttemptPostgres) CompletedPage(ctx context.Context, userID, topicID string, page repository.PageQuery) (*repository.PageResult[model.QuizAttempt], error) {
	const where = ` WHERE user_id = $1 AND status = 'completed' AND ($2 = '' OR topic_id = $2)`

	var total int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_attempts`+where, userID, topicID).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + attemptColumns + ` FROM quiz_attempts` + where +
		` ORDER BY completed_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, userID, topicID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items, err := scanAttempts(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.QuizAttempt]{Items: items, Total: total}, nil
}

// Leaderboard aggregates completed attempts per user and joins the user's name and avatar.
func (r *AttemptPostgres) Leaderboard(ctx context.Context, lq repository.LeaderboardQuery) ([]model.LeaderboardEntry, error) {
	const q = `
		SELECT u.id, u.username, COALESCE(u.profile->>'avatar', ''),
		       COUNT(*), AVG(a.score)::double precision, SUM(a.score), MAX(a.score)
		FROM quiz_attempts a
		JOIN users u ON u.id = a.user_id
		WHERE a.status = 'completed' AND a.completed_at >= $1 AND ($2 = '' OR a.topic_id = $2)
		GROUP BY u.id
		ORDER BY AVG(a.score) DESC, COUNT(*) DESC, u.username
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, lq.Since, lq.TopicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LeaderboardEntry, 0)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(
			&e.UserID,
			&e.Username,
			&e.Avatar,
			&e.TotalQuizzes,
			&e.AverageScore,
			&e.TotalPoints,
			&e.BestScore,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AttemptPostgres) AbandonStale(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	const q = `
		UPDATE quiz_attempts SET status = 'abandoned', updated_at = now()
		WHERE status = 'in-progress'
		  AND started_at + (time_limit + $2) * interval '1 second' < $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, now, int(grace.Seconds()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
