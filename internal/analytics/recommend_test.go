package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzed/internal/model"
)

func TestTopicPerformances(t *testing.T) {
	attempts := []model.QuizAttempt{
		completed("science", 50, 0, daysAgo(3)),
		completed("math", 90, 0, daysAgo(2)),
		completed("science", 70, 0, daysAgo(1)),
	}
	order, perf := TopicPerformances(attempts)

	assert.Equal(t, []string{"science", "math"}, order)
	assert.Equal(t, 60.0, perf["science"].AverageScore)
	assert.Equal(t, 2, perf["science"].TotalAttempts)
	assert.Equal(t, "improving", perf["science"].Trend)
}

func TestQuizRecommendations(t *testing.T) {
	attempts := []model.QuizAttempt{
		completed("mathematics", 50, 0, daysAgo(3)),
		completed("science", 95, 0, daysAgo(2)),
	}
	order, perf := TopicPerformances(attempts)
	recs := QuizRecommendations(order, perf, []string{"mathematics", "science"})

	require.Len(t, recs, 4)
	assert.Equal(t, "improvement", recs[0].Type)
	assert.Equal(t, "mathematics", recs[0].TopicID)
	assert.Equal(t, "Your average score is 50.0%. More practice could help!", recs[0].Reason)
	assert.Equal(t, "exploration", recs[1].Type)
	assert.Equal(t, "history", recs[1].TopicID)
	assert.Equal(t, "literature", recs[2].TopicID)
	assert.Equal(t, "advancement", recs[3].Type)
	assert.Equal(t, "advanced-science", recs[3].TopicID)
}

func TestQuizRecommendations_CapsAtFive(t *testing.T) {
	var attempts []model.QuizAttempt
	for _, topic := range []string{"a", "b", "c", "d", "e", "f"} {
		attempts = append(attempts, completed(topic, 10, 0, daysAgo(1)))
	}
	order, perf := TopicPerformances(attempts)
	assert.Len(t, QuizRecommendations(order, perf, nil), 5)
}

func TestDashboardRecommendations(t *testing.T) {
	t.Run("low recent scores", func(t *testing.T) {
		recent := []model.QuizAttempt{
			completed("history", 40, 0, daysAgo(0)),
			completed("history", 50, 0, daysAgo(1)),
			completed("history", 55, 0, daysAgo(2)),
		}
		recs := DashboardRecommendations(recent)
		require.Len(t, recs, 2)
		assert.Equal(t, "Focus on Fundamentals", recs[0].Title)
		assert.Equal(t, "Improve History", recs[1].Title)
		assert.Equal(t, "Your history average is 48%. More practice recommended.", recs[1].Description)
		assert.Equal(t, "study-history", recs[1].Action)
	})

	t.Run("high recent scores", func(t *testing.T) {
		recent := []model.QuizAttempt{
			completed("math", 90, 0, daysAgo(0)),
			completed("math", 95, 0, daysAgo(1)),
			completed("math", 100, 0, daysAgo(2)),
		}
		recs := DashboardRecommendations(recent)
		require.Len(t, recs, 1)
		assert.Equal(t, "challenge", recs[0].Type)
	})

	t.Run("too few attempts", func(t *testing.T) {
		assert.Empty(t, DashboardRecommendations([]model.QuizAttempt{completed("math", 80, 0, daysAgo(0))}))
	})
}

func TestKnowledgeGaps(t *testing.T) {
	gaps := KnowledgeGaps(
		[]string{"math", "science", "history"},
		map[string][]int{"math": {90, 80}, "science": {40, 50}},
	)
	assert.Equal(t, []string{"science", "history"}, gaps)
}
