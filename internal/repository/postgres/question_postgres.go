package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

const questionColumns = `id, question_text, question_type, options, correct_answer, explanation,
		difficulty, topics, tags, metadata, total_attempts, correct_attempts, average_time,
		ai_personalization, created_by, status, created_at, updated_at`

// QuestionPostgres is a PostgreSQL implementation of repository.QuestionRepository.
type QuestionPostgres struct {
	db *sql.DB
}

// NewQuestionPostgres creates a new QuestionPostgres repository.
func NewQuestionPostgres(db *sql.DB) *QuestionPostgres {
	return &QuestionPostgres{db: db}
}

var _ repository.QuestionRepository = (*QuestionPostgres)(nil)

func scanQuestion(row rowScanner) (*model.Question, error) {
	var q model.Question
	var options, metadata, personalization []byte
	if err := row.Scan(
		&q.ID,
		&q.QuestionText,
		&q.QuestionType,
		&options,
		&q.CorrectAnswer,
		&q.Explanation,
		&q.Difficulty,
		pq.Array(&q.Topics),
		pq.Array(&q.Tags),
		&metadata,
		&q.Analytics.TotalAttempts,
		&q.Analytics.CorrectAttempts,
		&q.Analytics.AverageTime,
		&personalization,
		&q.CreatedBy,
		&q.Status,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := fromJSON(options, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if err := fromJSON(metadata, &q.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := fromJSON(personalization, &q.AIPersonalization); err != nil {
		return nil, fmt.Errorf("decode ai personalization: %w", err)
	}
	q.Topics = nonNil(q.Topics)
	q.Tags = nonNil(q.Tags)
	return &q, nil
}

func scanQuestions(rows *sql.Rows) ([]model.Question, error) {
	defer rows.Close()
	items := make([]model.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new question and returns the stored record.
func (r *QuestionPostgres) Create(ctx context.Context, q *model.Question) (*model.Question, error) {
	options, err := toJSON(q.Options)
	if err != nil {
		return nil, err
	}
	metadata, err := toJSON(q.Metadata)
	if err != nil {
		return nil, err
	}
	personalization, err := toJSON(q.AIPersonalization)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO questions (id, question_text, question_type, options, correct_answer, explanation,
			difficulty, topics, tags, metadata, ai_personalization, created_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING ` + questionColumns
	row := conn(ctx, r.db).QueryRowContext(ctx, stmt,
		q.ID,
		q.QuestionText,
		q.QuestionType,
		options,
		q.CorrectAnswer,
		q.Explanation,
		q.Difficulty,
		pq.Array(nonNil(q.Topics)),
		pq.Array(nonNil(q.Tags)),
		metadata,
		personalization,
		q.CreatedBy,
		q.Status,
		q.CreatedAt,
	)
	return scanQuestion(row)
}

// FindByID fetches a single question by its ID.
func (r *QuestionPostgres) FindByID(ctx context.Context, id string) (*model.Question, error) {
	q := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	return scanQuestion(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// FindActive returns the active questions of a topic.
func (r *QuestionPostgres) FindActive(ctx context.Context, f repository.QuestionFilter) ([]model.Question, error) {
	q := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE status = 'active' AND $1 = ANY(topics) AND ($2 = '' OR difficulty = $2)
		ORDER BY created_at, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, f.Topic, f.Difficulty)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// List returns questions matching the filter using LIMIT/OFFSET pagination and a total count.
func (r *QuestionPostgres) List(ctx context.Context, f repository.QuestionFilter, page repository.PageQuery) (*repository.PageResult[model.Question], error) {
	var conds []string
	var args []any
	if f.Topic != "" {
		args = append(args, f.Topic)
		conds = append(conds, fmt.Sprintf("$%d = ANY(topics)", len(args)))
	}
	if f.Difficulty != "" {
		args = append(args, f.Difficulty)
		conds = append(conds, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %s FROM questions%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		questionColumns, where, len(args)+1, len(args)+2)
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, err
	}
	items, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Question]{Items: items, Total: total}, nil
}

// TopicSummaries unnests the topic arrays of active questions and groups by topic.
func (r *QuestionPostgres) TopicSummaries(ctx context.Context) ([]model.TopicSummary, error) {
	const q = `
		SELECT t.topic,
		       COUNT(*),
		       array_agg(DISTINCT q.difficulty),
		       COALESCE(array_agg(DISTINCT q.metadata->>'subject')
		                FILTER (WHERE COALESCE(q.metadata->>'subject', '') <> ''), '{}')
		FROM questions q, unnest(q.topics) AS t(topic)
		WHERE q.status = 'active'
		GROUP BY t.topic
		ORDER BY COUNT(*) DESC, t.topic
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TopicSummary, 0)
	for rows.Next() {
		var s model.TopicSummary
		if err := rows.Scan(&s.Name, &s.QuestionCount, pq.Array(&s.Difficulties), pq.Array(&s.Subjects)); err != nil {
			return nil, err
		}
		s.Subjects = nonNil(s.Subjects)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordAnswer bumps the attempt counters and folds timeSpent into the running mean.
func (r *QuestionPostgres) RecordAnswer(ctx context.Context, id string, correct bool, timeSpent int) (*model.QuestionAnalytics, error) {
	const q = `
		UPDATE questions SET
			total_attempts   = total_attempts + 1,
			correct_attempts = correct_attempts + CASE WHEN $2 THEN 1 ELSE 0 END,
			average_time     = (average_time * total_attempts + $3) / (total_attempts + 1),
			updated_at       = now()
		WHERE id = $1
		RETURNING total_attempts, correct_attempts, average_time
	`
	var a model.QuestionAnalytics
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id, correct, float64(timeSpent)).Scan(
		&a.TotalAttempts,
		&a.CorrectAttempts,
		&a.AverageTime,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *QuestionPostgres) UpdateStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE questions SET status = $2, updated_at = now() WHERE id = $1`
	return execOne(ctx, r.db, q, id, status)
}
