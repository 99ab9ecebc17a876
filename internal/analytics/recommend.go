package analytics

import (
	"fmt"
	"math"
	"strings"

	"quizzed/internal/model"
)

// CoreTopics are suggested to learners who have not studied them yet.
var CoreTopics = []string{"mathematics", "science", "history", "literature", "geography", "programming"}

const maxRecommendations = 5

// TopicPerformance aggregates a learner's scores on one topic.
type TopicPerformance struct {
	Scores        []int   `json:"scores"`
	TotalAttempts int     `json:"totalAttempts"`
	AverageScore  float64 `json:"averageScore"`
	Trend         string  `json:"trend"`
}

// TopicPerformances groups attempts by topic, keeping the order in which
// topics first appear in attempts.
func TopicPerformances(attempts []model.QuizAttempt) ([]string, map[string]*TopicPerformance) {
	var order []string
	perf := make(map[string]*TopicPerformance)
	for i := range attempts {
		a := &attempts[i]
		p, ok := perf[a.TopicID]
		if !ok {
			p = &TopicPerformance{}
			perf[a.TopicID] = p
			order = append(order, a.TopicID)
		}
		p.Scores = append(p.Scores, a.ScoreValue())
		p.TotalAttempts++
	}
	for _, p := range perf {
		p.AverageScore = MeanInt(p.Scores)
		p.Trend = Trend(p.Scores)
	}
	return order, perf
}

// QuizRecommendation suggests a topic to practice next.
type QuizRecommendation struct {
	Type     string `json:"type"`
	TopicID  string `json:"topicId"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// QuizRecommendations proposes weak topics, unexplored core topics and
// advanced tracks for strong topics, at most five in total.
func QuizRecommendations(order []string, perf map[string]*TopicPerformance, studied []string) []QuizRecommendation {
	out := []QuizRecommendation{}

	for _, topic := range order {
		if p := perf[topic]; p.AverageScore < 70 {
			out = append(out, QuizRecommendation{
				Type:     "improvement",
				TopicID:  topic,
				Reason:   fmt.Sprintf("Your average score is %.1f%%. More practice could help!", p.AverageScore),
				Priority: "high",
			})
		}
	}

	seen := make(map[string]bool, len(studied))
	for _, s := range studied {
		seen[s] = true
	}
	explored := 0
	for _, topic := range CoreTopics {
		if explored == 2 {
			break
		}
		if seen[topic] {
			continue
		}
		explored++
		out = append(out, QuizRecommendation{
			Type:     "exploration",
			TopicID:  topic,
			Reason:   "Based on your interests, you might enjoy this topic",
			Priority: "medium",
		})
	}

	for _, topic := range order {
		if perf[topic].AverageScore >= 85 {
			out = append(out, QuizRecommendation{
				Type:     "advancement",
				TopicID:  "advanced-" + topic,
				Reason:   fmt.Sprintf("You're excelling at %s! Try advanced level questions.", topic),
				Priority: "medium",
			})
		}
	}

	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// DashboardRecommendation is a coaching hint on the dashboard.
type DashboardRecommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Priority    string `json:"priority"`
}

// DashboardRecommendations looks at the most recent attempts (newest first).
func DashboardRecommendations(recent []model.QuizAttempt) []DashboardRecommendation {
	out := []DashboardRecommendation{}
	scores := Scores(recent)

	if len(scores) >= 3 {
		avg := MeanInt(scores[:3])
		switch {
		case avg < 60:
			out = append(out, DashboardRecommendation{
				Type:        "improvement",
				Title:       "Focus on Fundamentals",
				Description: "Your recent scores suggest reviewing basic concepts would be helpful",
				Action:      "practice-basics",
				Priority:    "high",
			})
		case avg > 85:
			out = append(out, DashboardRecommendation{
				Type:        "challenge",
				Title:       "Ready for Advanced Topics",
				Description: "Your performance shows you're ready for more challenging material",
				Action:      "try-advanced",
				Priority:    "medium",
			})
		}
	}

	order, perf := TopicPerformances(recent)
	for _, topic := range order {
		avg := perf[topic].AverageScore
		if avg < 70 {
			out = append(out, DashboardRecommendation{
				Type:        "topic-focus",
				Title:       "Improve " + capitalize(topic),
				Description: fmt.Sprintf("Your %s average is %d%%. More practice recommended.", topic, int(math.Round(avg))),
				Action:      "study-" + topic,
				Priority:    "medium",
			})
		}
	}

	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// KnowledgeGaps returns the topics the learner has never completed or
// averages below 60 on.
func KnowledgeGaps(topics []string, scoresByTopic map[string][]int) []string {
	gaps := []string{}
	for _, t := range topics {
		scores := scoresByTopic[t]
		if len(scores) == 0 || MeanInt(scores) < 60 {
			gaps = append(gaps, t)
		}
	}
	return gaps
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
