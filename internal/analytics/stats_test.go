package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   string
	}{
		{"empty", nil, "stable"},
		{"single score", []int{50}, "stable"},
		{"two scores compare against zero", []int{40, 60}, "improving"},
		{"improving", []int{40, 45, 50, 80, 85, 90}, "improving"},
		{"declining", []int{90, 90, 90, 50, 50, 50}, "declining"},
		{"within five points", []int{70, 70, 72, 73, 74}, "stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trend(tt.scores))
		})
	}
}

func TestImprovementRate(t *testing.T) {
	assert.Equal(t, 0.0, ImprovementRate([]int{10, 20, 30, 40}))
	assert.Equal(t, 0.0, ImprovementRate([]int{50, 50, 50, 50, 50}))
	assert.InDelta(t, 20.0, ImprovementRate([]int{50, 50, 50, 50, 50, 70, 70, 70, 70, 70}), 0.001)
}

func TestMasteryLevel(t *testing.T) {
	tests := map[float64]string{
		95: "expert",
		90: "expert",
		80: "advanced",
		60: "intermediate",
		45: "beginner",
		10: "novice",
	}
	for avg, want := range tests {
		assert.Equal(t, want, MasteryLevel(avg), "avg %v", avg)
	}
}

func TestScoreDistribution(t *testing.T) {
	dist := ScoreDistribution([]int{0, 25, 26, 50, 51, 75, 76, 100, 100})
	assert.Equal(t, map[string]int{"0-25": 2, "26-50": 2, "51-75": 2, "76-100": 3}, dist)
}

func TestConsistencyScore(t *testing.T) {
	assert.Equal(t, 0.0, ConsistencyScore(nil))
	assert.Equal(t, 100.0, ConsistencyScore([]int{80, 80, 80}))
	assert.InDelta(t, 90.0, ConsistencyScore([]int{70, 90}), 0.001)
}

func TestLearningStyle(t *testing.T) {
	assert.Equal(t, "balanced", LearningStyle(nil))
	assert.Equal(t, "reflective", LearningStyle([]int{400, 350}))
	assert.Equal(t, "quick", LearningStyle([]int{60, 100}))
	assert.Equal(t, "balanced", LearningStyle([]int{200, 250}))
}

func TestTimeframe(t *testing.T) {
	assert.Equal(t, 7, Timeframe("7d"))
	assert.Equal(t, 30, Timeframe("30d"))
	assert.Equal(t, 90, Timeframe("90d"))
	assert.Equal(t, 90, Timeframe(""))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, Round1(66.666))
	assert.Equal(t, 50.0, Round1(50))
}
