package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"quizzed/internal/analytics"
	"quizzed/internal/model"
	"quizzed/internal/repository"
)

const (
	leaderboardSize   = 20
	recentQuizCount   = 5
	recommendationLog = 10
	performanceWindow = 30
)

// Goal types with computed progress.
const (
	GoalStreak      = "streak"
	GoalPerformance = "performance"
)

// UserSummary is the user section of the dashboard.
type UserSummary struct {
	Username    string            `json:"username"`
	Profile     model.Profile     `json:"profile"`
	Stats       model.UserStats   `json:"stats"`
	Preferences model.Preferences `json:"preferences"`
}

// RecentQuiz is a compact completed attempt. TimeSpent is in minutes.
type RecentQuiz struct {
	ID                string     `json:"id"`
	TopicID           string     `json:"topicId"`
	Score             int        `json:"score"`
	CompletedAt       *time.Time `json:"completedAt"`
	TimeSpent         int        `json:"timeSpent"`
	QuestionsAnswered int        `json:"questionsAnswered"`
}

// Overview is everything the dashboard home page shows.
type Overview struct {
	User            UserSummary                         `json:"user"`
	RecentQuizzes   []RecentQuiz                        `json:"recentQuizzes"`
	Performance     analytics.Performance               `json:"performance"`
	Recommendations []analytics.DashboardRecommendation `json:"recommendations"`
	Progress        analytics.Progress                  `json:"progress"`
	TopicMastery    []model.TopicMastery                `json:"topicMastery"`
}

// AnalyticsResult is the detailed report for one timeframe.
type AnalyticsResult struct {
	Analytics  analytics.Report
	Timeframe  string
	DataPoints int
}

// Leaderboard ranks participants in a timeframe. UserRank is nil when the
// caller has no completed quiz in the window.
type Leaderboard struct {
	Entries           []model.LeaderboardEntry
	UserRank          *int
	TotalParticipants int
	Timeframe         string
}

// GoalProgress is computed on read, never stored.
type GoalProgress struct {
	Current    float64 `json:"current"`
	Percentage float64 `json:"percentage"`
	Completed  bool    `json:"completed"`
}

// GoalView is a goal with its live progress.
type GoalView struct {
	model.Goal
	Progress GoalProgress `json:"progress"`
}

// DashboardService aggregates a learner's history into dashboard views.
type DashboardService interface {
	Overview(ctx context.Context, userID string) (*Overview, error)
	Analytics(ctx context.Context, userID, timeframe string) (*AnalyticsResult, error)
	Leaderboard(ctx context.Context, userID, topicID, timeframe string) (*Leaderboard, error)
	Goals(ctx context.Context, userID string) ([]GoalView, error)
	SetGoals(ctx context.Context, userID string, goals []model.Goal) ([]model.Goal, error)
}

type dashboardService struct {
	users    repository.UserRepository
	attempts repository.AttemptRepository
	now      func() time.Time
}

func NewDashboardService(users repository.UserRepository, attempts repository.AttemptRepository) DashboardService {
	return &dashboardService{users: users, attempts: attempts, now: time.Now}
}

func (s *dashboardService) Overview(ctx context.Context, userID string) (*Overview, error) {
	now := s.now()

	var (
		user    *model.User
		recent  []model.QuizAttempt
		monthly []model.QuizAttempt
		all     []model.QuizAttempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.user(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.attempts.ListCompleted(gctx, repository.AttemptFilter{UserID: userID, Limit: recommendationLog, Newest: true})
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = s.attempts.ListCompleted(gctx, repository.AttemptFilter{UserID: userID, Since: analytics.Since(now, performanceWindow)})
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.attempts.ListCompleted(gctx, repository.AttemptFilter{UserID: userID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quizzes := make([]RecentQuiz, 0, recentQuizCount)
	for i := range recent {
		if i == recentQuizCount {
			break
		}
		a := &recent[i]
		quizzes = append(quizzes, RecentQuiz{
			ID:                a.ID,
			TopicID:           a.TopicID,
			Score:             a.ScoreValue(),
			CompletedAt:       a.CompletedAt,
			TimeSpent:         toMinutes(a.TimeSpent),
			QuestionsAnswered: len(a.Answers),
		})
	}

	return &Overview{
		User: UserSummary{
			Username:    user.Username,
			Profile:     user.Profile,
			Stats:       user.Stats,
			Preferences: user.Preferences,
		},
		RecentQuizzes:   quizzes,
		Performance:     analytics.PerformanceOf(monthly, now),
		Recommendations: analytics.DashboardRecommendations(recent),
		Progress:        analytics.ProgressOf(all, user.Stats.TotalQuizzesTaken, now),
		TopicMastery:    topicMastery(all),
	}, nil
}

func (s *dashboardService) Analytics(ctx context.Context, userID, timeframe string) (*AnalyticsResult, error) {
	if timeframe == "" {
		timeframe = "30d"
	}
	now := s.now()
	all, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	since := analytics.Since(now, analytics.Timeframe(timeframe))
	window := make([]model.QuizAttempt, 0, len(all))
	for i := range all {
		if at := all[i].CompletedAt; at != nil && !at.Before(since) {
			window = append(window, all[i])
		}
	}

	return &AnalyticsResult{
		Analytics:  analytics.ReportOf(window, analytics.CompletionDates(all), now),
		Timeframe:  timeframe,
		DataPoints: len(window),
	}, nil
}

func (s *dashboardService) Leaderboard(ctx context.Context, userID, topicID, timeframe string) (*Leaderboard, error) {
	if timeframe == "" {
		timeframe = "30d"
	}
	entries, err := s.attempts.Leaderboard(ctx, repository.LeaderboardQuery{
		TopicID: topicID,
		Since:   analytics.Since(s.now(), analytics.Timeframe(timeframe)),
	})
	if err != nil {
		return nil, err
	}

	var rank *int
	for i := range entries {
		entries[i].AverageScore = analytics.Round1(entries[i].AverageScore)
		if entries[i].UserID == userID {
			entries[i].IsCurrentUser = true
			r := i + 1
			rank = &r
		}
	}

	total := len(entries)
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	return &Leaderboard{
		Entries:           entries,
		UserRank:          rank,
		TotalParticipants: total,
		Timeframe:         timeframe,
	}, nil
}

func (s *dashboardService) Goals(ctx context.Context, userID string) ([]GoalView, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	goals := u.LearningGoals
	if len(goals) == 0 {
		goals = defaultGoals(now)
	}

	var streak int
	for _, g := range goals {
		if g.Type == GoalStreak {
			all, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{UserID: userID})
			if err != nil {
				return nil, err
			}
			streak = analytics.Streak(analytics.CompletionDates(all), now)
			break
		}
	}

	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		var current float64
		switch g.Type {
		case GoalStreak:
			current = float64(streak)
		case GoalPerformance:
			current = u.Stats.AverageScore
		default:
			out = append(out, GoalView{Goal: g})
			continue
		}
		out = append(out, GoalView{Goal: g, Progress: goalProgress(current, g.Target)})
	}
	return out, nil
}

func (s *dashboardService) SetGoals(ctx context.Context, userID string, goals []model.Goal) ([]model.Goal, error) {
	if goals == nil {
		return nil, invalid("goals are required")
	}
	now := s.now().UTC()
	stamped := make([]model.Goal, len(goals))
	for i, g := range goals {
		g.CreatedAt = &now
		g.Status = "active"
		stamped[i] = g
	}
	if err := s.users.SetGoals(ctx, userID, stamped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return stamped, nil
}

func (s *dashboardService) user(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func defaultGoals(now time.Time) []model.Goal {
	week := now.AddDate(0, 0, 7)
	month := now.AddDate(0, 0, 30)
	return []model.Goal{
		{
			ID:       "quiz-streak",
			Title:    "Take a quiz every day for 7 days",
			Type:     GoalStreak,
			Target:   7,
			Deadline: &week,
			Status:   "active",
		},
		{
			ID:       "score-improvement",
			Title:    "Achieve 80% average score",
			Type:     GoalPerformance,
			Target:   80,
			Deadline: &month,
			Status:   "active",
		},
	}
}

func goalProgress(current, target float64) GoalProgress {
	p := GoalProgress{Current: current, Completed: current >= target}
	if target > 0 {
		p.Percentage = math.Min(100, current/target*100)
	}
	return p
}

// topicMastery groups completed attempts per topic, best average first.
func topicMastery(attempts []model.QuizAttempt) []model.TopicMastery {
	type acc struct {
		scores []int
		m      model.TopicMastery
		time   int
	}
	var order []string
	byTopic := make(map[string]*acc)
	for i := range attempts {
		a := &attempts[i]
		t, ok := byTopic[a.TopicID]
		if !ok {
			t = &acc{m: model.TopicMastery{Topic: a.TopicID}}
			byTopic[a.TopicID] = t
			order = append(order, a.TopicID)
		}
		score := a.ScoreValue()
		t.scores = append(t.scores, score)
		if len(t.scores) == 1 || score > t.m.BestScore {
			t.m.BestScore = score
		}
		t.time += a.TimeSpent
		if a.CompletedAt != nil && a.CompletedAt.After(t.m.LastAttempt) {
			t.m.LastAttempt = *a.CompletedAt
		}
	}

	out := make([]model.TopicMastery, 0, len(order))
	for _, topic := range order {
		t := byTopic[topic]
		avg := analytics.MeanInt(t.scores)
		t.m.Attempts = len(t.scores)
		t.m.AverageScore = analytics.Round1(avg)
		t.m.MasteryLevel = analytics.MasteryLevel(avg)
		t.m.TotalTimeSpent = toMinutes(t.time)
		out = append(out, t.m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	return out
}

func toMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}
