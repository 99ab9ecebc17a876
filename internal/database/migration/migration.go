package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Nested profile, stats and answer records are JSONB; string lists are TEXT[].
var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                  UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  username            TEXT             NOT NULL UNIQUE CHECK (char_length(username) BETWEEN 3 AND 30),
  email               TEXT             NOT NULL UNIQUE,
  password_hash       TEXT             NOT NULL,
  role                TEXT             NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'teacher', 'admin')),
  profile             JSONB            NOT NULL DEFAULT '{}'::jsonb,
  preferences         JSONB            NOT NULL DEFAULT '{}'::jsonb,
  total_quizzes_taken INTEGER          NOT NULL DEFAULT 0,
  total_score         INTEGER          NOT NULL DEFAULT 0,
  average_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
  topics_studied      TEXT[]           NOT NULL DEFAULT '{}',
  learning_goals      JSONB,
  last_login          TIMESTAMPTZ,
  created_at          TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_questions",
		SQL: `CREATE TABLE IF NOT EXISTS questions (
  id                 UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  question_text      TEXT             NOT NULL,
  question_type      TEXT             NOT NULL CHECK (question_type IN ('multiple-choice', 'true-false', 'short-answer', 'essay')),
  options            JSONB            NOT NULL DEFAULT '[]'::jsonb,
  correct_answer     TEXT             NOT NULL DEFAULT '',
  explanation        TEXT             NOT NULL DEFAULT '',
  difficulty         TEXT             NOT NULL DEFAULT 'medium' CHECK (difficulty IN ('easy', 'medium', 'hard')),
  topics             TEXT[]           NOT NULL DEFAULT '{}',
  tags               TEXT[]           NOT NULL DEFAULT '{}',
  metadata           JSONB            NOT NULL DEFAULT '{}'::jsonb,
  total_attempts     INTEGER          NOT NULL DEFAULT 0,
  correct_attempts   INTEGER          NOT NULL DEFAULT 0,
  average_time       DOUBLE PRECISION NOT NULL DEFAULT 0,
  ai_personalization JSONB            NOT NULL DEFAULT '{}'::jsonb,
  created_by         UUID             NOT NULL REFERENCES users (id),
  status             TEXT             NOT NULL DEFAULT 'active' CHECK (status IN ('draft', 'active', 'archived')),
  created_at         TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_quiz_attempts",
		SQL: `CREATE TABLE IF NOT EXISTS quiz_attempts (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  topic_id     TEXT        NOT NULL,
  question_ids TEXT[]      NOT NULL DEFAULT '{}',
  answers      JSONB       NOT NULL DEFAULT '[]'::jsonb,
  score        INTEGER     CHECK (score BETWEEN 0 AND 100),
  time_limit   INTEGER     NOT NULL DEFAULT 600,
  time_spent   INTEGER     NOT NULL DEFAULT 0,
  started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  completed_at TIMESTAMPTZ,
  status       TEXT        NOT NULL DEFAULT 'in-progress' CHECK (status IN ('in-progress', 'completed', 'abandoned')),
  metadata     JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_questions_topics",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_questions_topics ON questions USING GIN (topics);`,
	},
	{
		Name: "create_index_questions_difficulty_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_questions_difficulty_status ON questions (difficulty, status);`,
	},
	{
		Name: "create_index_questions_tags",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_questions_tags ON questions USING GIN (tags);`,
	},
	{
		Name: "create_index_questions_subject",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions ((metadata->>'subject'));`,
	},
	{
		Name: "create_index_attempts_user_completed",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attempts_user_completed ON quiz_attempts (user_id, completed_at DESC);`,
	},
	{
		Name: "create_index_attempts_topic_score",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attempts_topic_score ON quiz_attempts (topic_id, score DESC);`,
	},
	{
		Name: "create_index_attempts_status_started",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attempts_status_started ON quiz_attempts (status, started_at DESC);`,
	},
}

// EnsureMigrated checks if the 'users' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.users') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("msg", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("steps", len(steps)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
