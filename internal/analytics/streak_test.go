package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return now.AddDate(0, 0, -d)
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"no activity", nil, 0},
		{"only today", []time.Time{daysAgo(0)}, 1},
		{"several quizzes today count once", []time.Time{daysAgo(0), daysAgo(0).Add(-time.Hour)}, 1},
		{"three consecutive days", []time.Time{daysAgo(2), daysAgo(1), daysAgo(0)}, 3},
		{"gap breaks the streak", []time.Time{daysAgo(3), daysAgo(1), daysAgo(0)}, 2},
		{"nothing today", []time.Time{daysAgo(2), daysAgo(1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.dates, now))
		})
	}
}

func TestLongestStreak(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))
	assert.Equal(t, 1, LongestStreak([]time.Time{daysAgo(10)}))
	dates := []time.Time{daysAgo(10), daysAgo(9), daysAgo(8), daysAgo(8), daysAgo(5), daysAgo(4)}
	assert.Equal(t, 3, LongestStreak(dates))
}

func TestMilestones(t *testing.T) {
	t.Run("new learner sees first goal", func(t *testing.T) {
		ms := Milestones(4)
		assert.Len(t, ms, 1)
		assert.False(t, ms[0].Achieved)
		assert.Equal(t, 40, ms[0].Progress)
		assert.Equal(t, "10 Quizzes Goal", ms[0].Title)
	})

	t.Run("reached milestones followed by next", func(t *testing.T) {
		ms := Milestones(30)
		assert.Len(t, ms, 3)
		assert.True(t, ms[0].Achieved)
		assert.True(t, ms[1].Achieved)
		assert.Equal(t, "50 Quizzes Goal", ms[2].Title)
		assert.Equal(t, "Complete 20 more quizzes to unlock this milestone", ms[2].Description)
	})

	t.Run("everything achieved", func(t *testing.T) {
		ms := Milestones(600)
		assert.Len(t, ms, 6)
		for _, m := range ms {
			assert.True(t, m.Achieved)
		}
	})
}
