package model

import "time"

// Question types.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeShortAnswer    = "short-answer"
	TypeEssay          = "essay"
)

// Question difficulties.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question statuses.
const (
	QuestionDraft    = "draft"
	QuestionActive   = "active"
	QuestionArchived = "archived"
)

// ValidQuestionType reports whether s is a supported question type.
func ValidQuestionType(s string) bool {
	switch s {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer, TypeEssay:
		return true
	}
	return false
}

// ValidDifficulty reports whether s is a supported difficulty.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ValidQuestionStatus reports whether s is a supported question status.
func ValidQuestionStatus(s string) bool {
	switch s {
	case QuestionDraft, QuestionActive, QuestionArchived:
		return true
	}
	return false
}

// Option is one answer choice.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionMetadata carries authoring details.
type QuestionMetadata struct {
	Subject       string `json:"subject,omitempty"`
	Grade         string `json:"grade,omitempty"`
	EstimatedTime int    `json:"estimatedTime,omitempty"`
	Points        int    `json:"points"`
}

// QuestionAnalytics is updated every time the question is answered.
type QuestionAnalytics struct {
	TotalAttempts   int     `json:"totalAttempts"`
	CorrectAttempts int     `json:"correctAttempts"`
	AverageTime     float64 `json:"averageTime"`
}

// SuccessRate is the percentage of correct attempts, 0 when never attempted.
func (a QuestionAnalytics) SuccessRate() float64 {
	if a.TotalAttempts == 0 {
		return 0
	}
	return float64(a.CorrectAttempts) / float64(a.TotalAttempts) * 100
}

// Personalization holds tutor hints attached to a question.
type Personalization struct {
	AdaptiveHints         []string `json:"adaptiveHints,omitempty"`
	ConceptualConnections []string `json:"conceptualConnections,omitempty"`
	PrerequisiteTopics    []string `json:"prerequisiteTopics,omitempty"`
}

// Question is a single quiz item.
type Question struct {
	ID                string            `json:"id"`
	QuestionText      string            `json:"questionText"`
	QuestionType      string            `json:"questionType"`
	Options           []Option          `json:"options"`
	CorrectAnswer     string            `json:"correctAnswer,omitempty"`
	Explanation       string            `json:"explanation"`
	Difficulty        string            `json:"difficulty"`
	Topics            []string          `json:"topics"`
	Tags              []string          `json:"tags"`
	Metadata          QuestionMetadata  `json:"metadata"`
	Analytics         QuestionAnalytics `json:"analytics"`
	AIPersonalization Personalization   `json:"aiPersonalization"`
	CreatedBy         string            `json:"createdBy"`
	Status            string            `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// CorrectIndex returns the index of the first correct option, or -1.
func (q *Question) CorrectIndex() int {
	for i, o := range q.Options {
		if o.IsCorrect {
			return i
		}
	}
	return -1
}

// IsCorrect reports whether the option at idx is correct. Out-of-range indexes are wrong answers.
func (q *Question) IsCorrect(idx int) bool {
	if idx < 0 || idx >= len(q.Options) {
		return false
	}
	return q.Options[idx].IsCorrect
}

// EstimatedTimeOrDefault returns the authored time estimate or 60 seconds.
func (q *Question) EstimatedTimeOrDefault() int {
	if q.Metadata.EstimatedTime > 0 {
		return q.Metadata.EstimatedTime
	}
	return 60
}

// OptionText is an option with its correctness removed.
type OptionText struct {
	Text string `json:"text"`
}

// QuizQuestion is what a learner sees while taking a quiz.
type QuizQuestion struct {
	ID            string       `json:"id"`
	QuestionText  string       `json:"questionText"`
	QuestionType  string       `json:"questionType"`
	Options       []OptionText `json:"options"`
	Difficulty    string       `json:"difficulty"`
	Topics        []string     `json:"topics"`
	Tags          []string     `json:"tags"`
	EstimatedTime int          `json:"estimatedTime"`
}

// ForQuiz strips the answer key from a question.
func (q *Question) ForQuiz() QuizQuestion {
	opts := make([]OptionText, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, OptionText{Text: o.Text})
	}
	return QuizQuestion{
		ID:            q.ID,
		QuestionText:  q.QuestionText,
		QuestionType:  q.QuestionType,
		Options:       opts,
		Difficulty:    q.Difficulty,
		Topics:        q.Topics,
		Tags:          q.Tags,
		EstimatedTime: q.EstimatedTimeOrDefault(),
	}
}

// TopicSummary is an aggregate of active questions sharing a topic.
type TopicSummary struct {
	Name          string
	QuestionCount int
	Difficulties  []string
	Subjects      []string
}
