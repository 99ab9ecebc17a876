package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func distinctDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, t := range dates {
		d := dayOf(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Streak counts consecutive UTC calendar days with at least one completed
// quiz, ending today. A learner who has not finished a quiz today has no streak.
func Streak(dates []time.Time, now time.Time) int {
	days := distinctDays(dates)
	want := dayOf(now)
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].After(want) {
			continue
		}
		if !days[i].Equal(want) {
			break
		}
		streak++
		want = want.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive UTC days with activity.
func LongestStreak(dates []time.Time) int {
	days := distinctDays(dates)
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

var quizMilestones = []int{10, 25, 50, 100, 250, 500}

// Milestone is a quiz-count achievement.
type Milestone struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Achieved    bool   `json:"achieved"`
	Progress    int    `json:"progress,omitempty"`
	Description string `json:"description"`
}

// Milestones lists every reached quiz-count milestone followed by the next one.
func Milestones(totalQuizzes int) []Milestone {
	var out []Milestone
	for _, m := range quizMilestones {
		if totalQuizzes >= m {
			out = append(out, Milestone{
				Type:        "quizzes",
				Title:       fmt.Sprintf("%d Quizzes Completed", m),
				Achieved:    true,
				Description: fmt.Sprintf("You've completed %d quizzes!", m),
			})
			continue
		}
		out = append(out, Milestone{
			Type:        "quizzes",
			Title:       fmt.Sprintf("%d Quizzes Goal", m),
			Achieved:    false,
			Progress:    int(math.Round(float64(totalQuizzes) / float64(m) * 100)),
			Description: fmt.Sprintf("Complete %d more quizzes to unlock this milestone", m-totalQuizzes),
		})
		break
	}
	return out
}
