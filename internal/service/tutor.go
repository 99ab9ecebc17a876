package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizzed/internal/analytics"
	"quizzed/internal/llm"
	"quizzed/internal/metrics"
	"quizzed/internal/model"
	"quizzed/internal/repository"
)

const tutorSystemPrompt = "You are an expert educational AI tutor. Generate personalized explanations that adapt to the student's learning level, style, and performance history. Be encouraging, clear, and educational."

const (
	maxHints          = 3
	defaultSuggestion = 5
	profileHistory    = 10
	strongMastery     = 75
)

var progressiveHints = map[int]string{
	1: "Think about the key concept this question is testing. What topic does it relate to?",
	2: "Consider each option carefully. Which one directly addresses the main idea of the question?",
	3: "Look for keywords in the question that might point you toward the correct concept or definition.",
}

const defaultHint = "Take your time and think through each option systematically."

// Completer is the subset of the LLM client the tutor needs.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, prompt string, opt llm.Options) (string, error)
}

// ExplanationInput describes the answer to explain. A nil UserAnswer means
// the learner skipped the question.
type ExplanationInput struct {
	QuestionID string
	UserAnswer *int
	IsCorrect  bool
	TimeSpent  int
}

// ExplanationMeta describes how an explanation was produced.
type ExplanationMeta struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	PersonalizedFor string    `json:"personalizedFor,omitempty"`
	QuestionTopic   string    `json:"questionTopic,omitempty"`
	Fallback        bool      `json:"fallback,omitempty"`
	Reason          string    `json:"reason,omitempty"`
}

// Explanation is tutor feedback for one answer.
type Explanation struct {
	Text     string
	Metadata ExplanationMeta
}

// RecentResult is one completed quiz in a learning profile.
type RecentResult struct {
	Topic     string `json:"topic"`
	Score     int    `json:"score"`
	TimeSpent int    `json:"timeSpent"`
}

// LearningProfile is what the tutor knows about a learner.
type LearningProfile struct {
	Username          string         `json:"username"`
	LearningLevel     string         `json:"learningLevel"`
	FavoriteTopics    []string       `json:"favoriteTopics"`
	AverageScore      float64        `json:"averageScore"`
	TotalQuizzes      int            `json:"totalQuizzes"`
	RecentPerformance []RecentResult `json:"recentPerformance"`
	LearningStyle     string         `json:"learningStyle"`
	KnowledgeGaps     []string       `json:"knowledgeGaps"`
}

// Hint is one progressive hint.
type Hint struct {
	Hint      string
	HintLevel int
	MaxHints  int
}

// StudyPlanInput asks for a four-week plan. TimeAvailable is hours per week.
type StudyPlanInput struct {
	Topics        []string
	TimeAvailable float64
	Goals         []string
}

// StudyPlan is the generated plan.
type StudyPlan struct {
	Plan           string    `json:"plan"`
	GeneratedAt    time.Time `json:"generatedAt"`
	Duration       string    `json:"duration"`
	EstimatedHours float64   `json:"estimatedHours"`
}

// PlanProfile summarizes where the learner stands for a study plan.
type PlanProfile struct {
	StrongAreas         []string `json:"strongAreas"`
	ImprovementAreas    []string `json:"improvementAreas"`
	PreferredDifficulty string   `json:"preferredDifficulty"`
	AverageSessionTime  int      `json:"averageSessionTime"`
}

// StudyPlanResult pairs the plan with the profile it was built for.
type StudyPlanResult struct {
	StudyPlan       StudyPlan
	LearningProfile PlanProfile
}

// Suggestion is a question offered for practice.
type Suggestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText"`
	Difficulty    string   `json:"difficulty"`
	Topics        []string `json:"topics"`
	Tags          []string `json:"tags"`
	EstimatedTime int      `json:"estimatedTime"`
}

// Suggestions is an adaptive practice set.
type Suggestions struct {
	Suggestions       []Suggestion
	TargetedWeakAreas []string
}

// TutorService generates explanations, hints, study plans and practice sets.
type TutorService interface {
	Explain(ctx context.Context, userID string, in ExplanationInput) (*Explanation, error)
	Hint(ctx context.Context, questionID string, attempt int) (*Hint, error)
	StudyPlan(ctx context.Context, userID string, in StudyPlanInput) (*StudyPlanResult, error)
	QuestionSuggestions(ctx context.Context, userID, topicID string, count int) (*Suggestions, error)
}

type tutorService struct {
	users     repository.UserRepository
	questions repository.QuestionRepository
	attempts  repository.AttemptRepository
	llm       Completer
	metrics   *metrics.Domain
	log       *zap.Logger
	now       func() time.Time
	newRand   func() *rand.Rand
}

// NewTutorService constructs a TutorService. completer, m and log may be nil.
func NewTutorService(users repository.UserRepository, questions repository.QuestionRepository, attempts repository.AttemptRepository, completer Completer, m *metrics.Domain, log *zap.Logger) TutorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &tutorService{
		users:     users,
		questions: questions,
		attempts:  attempts,
		llm:       completer,
		metrics:   m,
		log:       log,
		now:       time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (s *tutorService) Explain(ctx context.Context, userID string, in ExplanationInput) (*Explanation, error) {
	if in.QuestionID == "" {
		return nil, invalid("Question ID is required")
	}
	q, err := s.question(ctx, in.QuestionID)
	if err != nil {
		return nil, err
	}

	meta := ExplanationMeta{GeneratedAt: s.now().UTC()}
	if len(q.Topics) > 0 {
		meta.QuestionTopic = q.Topics[0]
	}

	profile, err := s.learningProfile(ctx, userID, q.Topics)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		s.log.Warn("learning profile unavailable", zap.String("user_id", userID), zap.Error(err))
		return s.fallback(q, in.IsCorrect, meta), nil
	}
	meta.PersonalizedFor = profile.Username

	if s.llm == nil || !s.llm.Enabled() {
		return s.fallback(q, in.IsCorrect, meta), nil
	}

	text, err := s.llm.Complete(ctx, tutorSystemPrompt, explanationPrompt(q, in, profile), llm.Options{
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		s.log.Warn("llm explanation failed", zap.String("question_id", q.ID), zap.Error(err))
		return s.fallback(q, in.IsCorrect, meta), nil
	}
	s.metrics.Explanation("llm")
	return &Explanation{Text: text, Metadata: meta}, nil
}

func (s *tutorService) fallback(q *model.Question, correct bool, meta ExplanationMeta) *Explanation {
	s.metrics.Explanation("fallback")
	meta.Fallback = true
	meta.Reason = "AI service unavailable"
	return &Explanation{Text: fallbackExplanation(q, correct), Metadata: meta}
}

func (s *tutorService) Hint(ctx context.Context, questionID string, attempt int) (*Hint, error) {
	if questionID == "" {
		return nil, invalid("Question ID is required")
	}
	if _, err := s.question(ctx, questionID); err != nil {
		return nil, err
	}
	text, ok := progressiveHints[attempt]
	if !ok {
		text = defaultHint
	}
	return &Hint{Hint: text, HintLevel: attempt, MaxHints: maxHints}, nil
}

func (s *tutorService) StudyPlan(ctx context.Context, userID string, in StudyPlanInput) (*StudyPlanResult, error) {
	if len(in.Topics) == 0 {
		return nil, invalid("Please provide at least one topic")
	}
	if in.TimeAvailable <= 0 {
		return nil, invalid("timeAvailable must be a positive number of hours per week")
	}

	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	strong := []string{}
	strongSet := make(map[string]bool)
	for _, m := range topicMastery(all) {
		if m.AverageScore >= strongMastery {
			strong = append(strong, m.Topic)
			strongSet[m.Topic] = true
		}
	}
	improve := []string{}
	for _, t := range in.Topics {
		if !strongSet[t] {
			improve = append(improve, t)
		}
	}

	return &StudyPlanResult{
		StudyPlan: StudyPlan{
			Plan:           studyPlanText(in),
			GeneratedAt:    s.now().UTC(),
			Duration:       "4 weeks",
			EstimatedHours: in.TimeAvailable * 4,
		},
		LearningProfile: PlanProfile{
			StrongAreas:         strong,
			ImprovementAreas:    improve,
			PreferredDifficulty: preferredDifficulty(u.Preferences.DifficultyLevel),
			AverageSessionTime:  20,
		},
	}, nil
}

func (s *tutorService) QuestionSuggestions(ctx context.Context, userID, topicID string, count int) (*Suggestions, error) {
	if topicID == "" {
		return nil, invalid("topicId is required")
	}
	if count <= 0 {
		count = defaultSuggestion
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	pool, err := s.questions.FindActive(ctx, repository.QuestionFilter{Topic: topicID})
	if err != nil {
		return nil, err
	}
	all, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{UserID: userID, Newest: true})
	if err != nil {
		return nil, err
	}

	var onTopic []model.QuizAttempt
	for i := range all {
		if all[i].TopicID == topicID && len(onTopic) < topicHistorySize {
			onTopic = append(onTopic, all[i])
		}
	}
	picked := analytics.SelectQuestions(pool, analytics.HistoryOf(onTopic), count, s.newRand())

	out := make([]Suggestion, 0, len(picked))
	var topics []string
	seen := make(map[string]bool)
	for i := range picked {
		q := &picked[i]
		out = append(out, Suggestion{
			ID:            q.ID,
			QuestionText:  q.QuestionText,
			Difficulty:    q.Difficulty,
			Topics:        q.Topics,
			Tags:          q.Tags,
			EstimatedTime: q.EstimatedTimeOrDefault(),
		})
		for _, t := range q.Topics {
			if !seen[t] {
				seen[t] = true
				topics = append(topics, t)
			}
		}
	}

	return &Suggestions{
		Suggestions:       out,
		TargetedWeakAreas: analytics.KnowledgeGaps(topics, scoresByTopic(all)),
	}, nil
}

func (s *tutorService) learningProfile(ctx context.Context, userID string, topics []string) (*LearningProfile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.attempts.ListCompleted(ctx, repository.AttemptFilter{UserID: userID, Newest: true})
	if err != nil {
		return nil, err
	}

	recent := all
	if len(recent) > profileHistory {
		recent = recent[:profileHistory]
	}
	perf := make([]RecentResult, 0, len(recent))
	times := make([]int, 0, len(recent))
	for i := range recent {
		perf = append(perf, RecentResult{
			Topic:     recent[i].TopicID,
			Score:     recent[i].ScoreValue(),
			TimeSpent: recent[i].TimeSpent,
		})
		times = append(times, recent[i].TimeSpent)
	}

	return &LearningProfile{
		Username:          u.Username,
		LearningLevel:     u.Preferences.DifficultyLevel,
		FavoriteTopics:    u.Preferences.FavoriteTopics,
		AverageScore:      u.Stats.AverageScore,
		TotalQuizzes:      u.Stats.TotalQuizzesTaken,
		RecentPerformance: perf,
		LearningStyle:     analytics.LearningStyle(times),
		KnowledgeGaps:     analytics.KnowledgeGaps(topics, scoresByTopic(all)),
	}, nil
}

func (s *tutorService) user(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *tutorService) question(ctx context.Context, id string) (*model.Question, error) {
	if !validID(id) {
		return nil, ErrQuestionNotFound
	}
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func scoresByTopic(attempts []model.QuizAttempt) map[string][]int {
	out := make(map[string][]int)
	for i := range attempts {
		out[attempts[i].TopicID] = append(out[attempts[i].TopicID], attempts[i].ScoreValue())
	}
	return out
}

func explanationPrompt(q *model.Question, in ExplanationInput, p *LearningProfile) string {
	selected := "No answer"
	if in.UserAnswer != nil && *in.UserAnswer >= 0 && *in.UserAnswer < len(q.Options) {
		selected = q.Options[*in.UserAnswer].Text
	}
	correct := ""
	if i := q.CorrectIndex(); i >= 0 {
		correct = q.Options[i].Text
	}
	result, first := "Incorrect", "Gently corrects and explains the concept"
	if in.IsCorrect {
		result, first = "Correct", "Congratulates the student and reinforces learning"
	}

	var b strings.Builder
	b.WriteString("Student Profile:\n")
	fmt.Fprintf(&b, "- Username: %s\n", p.Username)
	fmt.Fprintf(&b, "- Learning Level: %s\n", p.LearningLevel)
	fmt.Fprintf(&b, "- Average Score: %g%%\n", analytics.Round1(p.AverageScore))
	fmt.Fprintf(&b, "- Learning Style: %s\n", p.LearningStyle)
	fmt.Fprintf(&b, "- Favorite Topics: %s\n", strings.Join(p.FavoriteTopics, ", "))
	if len(p.KnowledgeGaps) > 0 {
		fmt.Fprintf(&b, "- Knowledge Gaps: %s\n", strings.Join(p.KnowledgeGaps, ", "))
	}
	b.WriteString("\nQuestion Details:\n")
	fmt.Fprintf(&b, "- Topic: %s\n", strings.Join(q.Topics, ", "))
	fmt.Fprintf(&b, "- Difficulty: %s\n", q.Difficulty)
	fmt.Fprintf(&b, "- Question: %q\n", q.QuestionText)
	fmt.Fprintf(&b, "- Student's Answer: %q\n", selected)
	fmt.Fprintf(&b, "- Correct Answer: %q\n", correct)
	fmt.Fprintf(&b, "- Result: %s\n", result)
	fmt.Fprintf(&b, "- Time Spent: %d seconds\n", in.TimeSpent)
	fmt.Fprintf(&b, "- Standard Explanation: %s\n", q.Explanation)
	b.WriteString("\nGenerate a personalized explanation that:\n")
	fmt.Fprintf(&b, "1. %s\n", first)
	b.WriteString("2. Connects to their learning style and interests\n")
	b.WriteString("3. References their performance level appropriately\n")
	b.WriteString("4. Provides specific next steps or related concepts to explore\n")
	b.WriteString("5. Keeps an encouraging, supportive tone\n")
	b.WriteString("\nKeep the response under 150 words and make it conversational.\n")
	return b.String()
}

func fallbackExplanation(q *model.Question, correct bool) string {
	emoji, opener, closer := "📚", "Good attempt!", "You'll get it next time!"
	if correct {
		emoji, opener, closer = "🎉", "Great job!", "Keep up the excellent work!"
	}
	return fmt.Sprintf("%s %s %s\n\n💡 Study tip: Practice similar questions to reinforce this concept. %s",
		emoji, opener, q.Explanation, closer)
}

func studyPlanText(in StudyPlanInput) string {
	first, rest := in.Topics, []string(nil)
	if len(first) > 2 {
		first, rest = in.Topics[:2], in.Topics[2:]
	}
	later := strings.Join(rest, ", ")
	if later == "" {
		later = "review of " + strings.Join(first, ", ")
	}

	var b strings.Builder
	b.WriteString("**4-Week Study Plan**\n\n")
	b.WriteString("**Week 1-2: Foundation Building**\n")
	fmt.Fprintf(&b, "- Focus on: %s\n", strings.Join(first, ", "))
	fmt.Fprintf(&b, "- Time: %d hours/week\n", int(math.Round(in.TimeAvailable*0.6)))
	b.WriteString("- Strategy: Start with easier questions, build confidence\n\n")
	b.WriteString("**Week 3-4: Advanced Practice**\n")
	fmt.Fprintf(&b, "- Focus on: %s\n", later)
	fmt.Fprintf(&b, "- Time: %d hours/week\n", int(math.Round(in.TimeAvailable*0.8)))
	b.WriteString("- Strategy: Challenge yourself with harder questions\n\n")
	b.WriteString("**Daily Routine:**\n")
	b.WriteString("- 15-20 minutes of focused practice\n")
	b.WriteString("- Review mistakes immediately\n")
	b.WriteString("- Take notes on difficult concepts\n")
	if len(in.Goals) > 0 {
		b.WriteString("\n**Goals:**\n")
		for _, g := range in.Goals {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	return b.String()
}

func preferredDifficulty(level string) string {
	switch level {
	case model.LevelBeginner:
		return model.DifficultyEasy
	case model.LevelAdvanced:
		return model.DifficultyHard
	default:
		return model.DifficultyMedium
	}
}
