package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizzed/internal/model"
	"quizzed/internal/repository"
)

// QuestionPage is one page of the question bank.
type QuestionPage struct {
	Questions  []model.Question
	Pagination Pagination
}

// QuestionService manages the question bank for teachers and admins.
type QuestionService interface {
	// Create validates q, fills defaults and stores it as authored by authorID.
	Create(ctx context.Context, authorID string, q model.Question) (*model.Question, error)
	List(ctx context.Context, f repository.QuestionFilter, page, limit int) (*QuestionPage, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type questionService struct {
	questions repository.QuestionRepository
	now       func() time.Time
}

func NewQuestionService(questions repository.QuestionRepository) QuestionService {
	return &questionService{questions: questions, now: time.Now}
}

func (s *questionService) Create(ctx context.Context, authorID string, q model.Question) (*model.Question, error) {
	q.QuestionText = strings.TrimSpace(q.QuestionText)
	if q.QuestionText == "" {
		return nil, invalid("Question text is required")
	}
	if q.QuestionType == "" {
		q.QuestionType = model.TypeMultipleChoice
	}
	if !model.ValidQuestionType(q.QuestionType) {
		return nil, invalid(fmt.Sprintf("Unsupported question type %q", q.QuestionType))
	}
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if !model.ValidDifficulty(q.Difficulty) {
		return nil, invalid("difficulty must be one of easy, medium, hard")
	}
	if q.Status == "" {
		q.Status = model.QuestionActive
	}
	if !model.ValidQuestionStatus(q.Status) {
		return nil, invalid("status must be one of draft, active, archived")
	}

	topics := make([]string, 0, len(q.Topics))
	for _, t := range q.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return nil, invalid("At least one topic is required")
	}
	q.Topics = topics

	if q.QuestionType == model.TypeMultipleChoice || q.QuestionType == model.TypeTrueFalse {
		if len(q.Options) < 2 {
			return nil, invalid("At least two options are required")
		}
		correct := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o.Text) == "" {
				return nil, invalid("Options must have text")
			}
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, invalid("Exactly one option must be marked correct")
		}
	}

	if q.Metadata.Points <= 0 {
		q.Metadata.Points = 1
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	now := s.now().UTC()
	q.ID = uuid.NewString()
	q.CreatedBy = authorID
	q.Analytics = model.QuestionAnalytics{}
	q.CreatedAt = now
	q.UpdatedAt = now

	return s.questions.Create(ctx, &q)
}

func (s *questionService) List(ctx context.Context, f repository.QuestionFilter, page, limit int) (*QuestionPage, error) {
	if f.Status != "" && !model.ValidQuestionStatus(f.Status) {
		return nil, invalid("status must be one of draft, active, archived")
	}
	if f.Difficulty != "" && !model.ValidDifficulty(f.Difficulty) {
		return nil, invalid("difficulty must be one of easy, medium, hard")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	res, err := s.questions.List(ctx, f, repository.PageQuery{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	return &QuestionPage{
		Questions: res.Items,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(res.Total) / float64(limit))),
			Total:       res.Total,
			HasMore:     page*limit < res.Total,
		},
	}, nil
}

func (s *questionService) UpdateStatus(ctx context.Context, id, status string) error {
	if !model.ValidQuestionStatus(status) {
		return invalid("status must be one of draft, active, archived")
	}
	if !validID(id) {
		return ErrQuestionNotFound
	}
	if err := s.questions.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return err
	}
	return nil
}
