package model

import (
	"math"
	"time"
)

// Attempt statuses.
const (
	AttemptInProgress = "in-progress"
	AttemptCompleted  = "completed"
	AttemptAbandoned  = "abandoned"
)

// Answer is a learner's response to one question of an attempt.
type Answer struct {
	QuestionID    string    `json:"questionId"`
	SelectedIndex int       `json:"selectedIndex"`
	IsCorrect     bool      `json:"isCorrect"`
	TimeSpent     int       `json:"timeSpent"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// AttemptMetadata records the request context an attempt was started with.
type AttemptMetadata struct {
	Difficulty    string `json:"difficulty,omitempty"`
	QuestionCount int    `json:"questionCount,omitempty"`
	DeviceInfo    string `json:"deviceInfo,omitempty"`
	IPAddress     string `json:"ipAddress,omitempty"`
}

// QuizAttempt is one run through a quiz.
type QuizAttempt struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	TopicID     string          `json:"topicId"`
	Questions   []string        `json:"questions"`
	Answers     []Answer        `json:"answers"`
	Score       *int            `json:"score,omitempty"`
	TimeLimit   int             `json:"timeLimit"`
	TimeSpent   int             `json:"timeSpent"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Status      string          `json:"status"`
	Metadata    AttemptMetadata `json:"metadata"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// HasQuestion reports whether id is one of the attempt's questions.
func (a *QuizAttempt) HasQuestion(id string) bool {
	for _, q := range a.Questions {
		if q == id {
			return true
		}
	}
	return false
}

// UpsertAnswer records ans, replacing an earlier answer to the same question.
func (a *QuizAttempt) UpsertAnswer(ans Answer) {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == ans.QuestionID {
			a.Answers[i] = ans
			return
		}
	}
	a.Answers = append(a.Answers, ans)
}

// CorrectCount is the number of correct answers.
func (a *QuizAttempt) CorrectCount() int {
	n := 0
	for _, ans := range a.Answers {
		if ans.IsCorrect {
			n++
		}
	}
	return n
}

// AnsweredTime sums the time spent over all answers.
func (a *QuizAttempt) AnsweredTime() int {
	total := 0
	for _, ans := range a.Answers {
		total += ans.TimeSpent
	}
	return total
}

// CompletionPercentage is the share of questions answered.
func (a *QuizAttempt) CompletionPercentage() int {
	if len(a.Questions) == 0 {
		return 0
	}
	return int(math.Round(float64(len(a.Answers)) / float64(len(a.Questions)) * 100))
}

// Accuracy is the share of answers that were correct.
func (a *QuizAttempt) Accuracy() int {
	if len(a.Answers) == 0 {
		return 0
	}
	return int(math.Round(float64(a.CorrectCount()) / float64(len(a.Answers)) * 100))
}

// FinalScore is the rounded percentage of questions answered correctly.
func (a *QuizAttempt) FinalScore() int {
	if len(a.Questions) == 0 {
		return 0
	}
	return int(math.Round(float64(a.CorrectCount()) / float64(len(a.Questions)) * 100))
}

// ScoreValue returns the score or 0 for attempts that were never completed.
func (a *QuizAttempt) ScoreValue() int {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}

// TopicMastery is the per-topic aggregate of a user's completed attempts.
type TopicMastery struct {
	Topic          string    `json:"topic"`
	Attempts       int       `json:"attempts"`
	AverageScore   float64   `json:"averageScore"`
	BestScore      int       `json:"bestScore"`
	MasteryLevel   string    `json:"masteryLevel"`
	TotalTimeSpent int       `json:"totalTimeSpent"`
	LastAttempt    time.Time `json:"lastAttempt"`
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	UserID        string  `json:"-"`
	Username      string  `json:"username"`
	Avatar        string  `json:"avatar"`
	TotalQuizzes  int     `json:"totalQuizzes"`
	AverageScore  float64 `json:"averageScore"`
	TotalPoints   int     `json:"totalPoints"`
	BestScore     int     `json:"bestScore"`
	IsCurrentUser bool    `json:"isCurrentUser"`
}
