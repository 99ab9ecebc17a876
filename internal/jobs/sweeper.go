package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Abandoner closes quiz attempts that ran past their time limit.
type Abandoner interface {
	AbandonStale(ctx context.Context, grace time.Duration) (int64, error)
}

// Sweeper periodically marks stale in-progress attempts as abandoned.
type Sweeper struct {
	quizzes Abandoner
	spec    string
	grace   time.Duration
	log     *zap.Logger
}

// NewSweeper validates the cron spec (standard five fields, UTC).
func NewSweeper(quizzes Abandoner, spec string, grace time.Duration, log *zap.Logger) (*Sweeper, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		quizzes: quizzes,
		spec:    spec,
		grace:   grace,
		log:     log.With(zap.String("component", "abandon_sweeper")),
	}, nil
}

// Run schedules the sweep and blocks until ctx is cancelled. A sweep that is
// still running when ctx ends is waited for.
func (s *Sweeper) Run(ctx context.Context) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(s.spec, func() { s.Sweep(ctx) }); err != nil {
		s.log.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()
	s.log.Info("cron scheduler started", zap.String("schedule", s.spec), zap.Duration("grace", s.grace))

	<-ctx.Done()

	<-c.Stop().Done()
	s.log.Info("cron scheduler stopped")
}

// Sweep runs one pass and reports how many attempts were abandoned.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	n, err := s.quizzes.AbandonStale(ctx, s.grace)
	if err != nil {
		s.log.Error("abandon sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.log.Info("abandoned stale quiz attempts", zap.Int64("count", n))
	}
	return n
}
