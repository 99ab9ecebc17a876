package analytics

import (
	"math"
	"time"
)

// MeanInt returns the arithmetic mean of xs, or 0 for an empty slice.
func MeanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

// StdDev is the population standard deviation of xs.
func StdDev(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := MeanInt(xs)
	var variance float64
	for _, x := range xs {
		d := float64(x) - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}

// ConsistencyScore maps spread to a 0..100 score; a lower standard deviation
// is more consistent.
func ConsistencyScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	return math.Max(0, 100-StdDev(scores))
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Timeframe converts a "7d"/"30d" query value to a number of days. Anything
// else means 90 days.
func Timeframe(s string) int {
	switch s {
	case "7d":
		return 7
	case "30d":
		return 30
	default:
		return 90
	}
}

// Since returns now minus the given number of days.
func Since(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// Trend compares the last three scores to everything before them.
func Trend(scores []int) string {
	if len(scores) < 2 {
		return "stable"
	}

	split := len(scores) - 3
	if split < 0 {
		split = 0
	}
	recentN := len(scores) - split
	earlierN := split
	if earlierN < 1 {
		earlierN = 1
	}

	recent := float64(sum(scores[split:])) / float64(recentN)
	earlier := float64(sum(scores[:split])) / float64(earlierN)

	switch {
	case recent > earlier+5:
		return "improving"
	case recent < earlier-5:
		return "declining"
	default:
		return "stable"
	}
}

// ImprovementRate is the mean of the last five scores minus the mean of the
// first five. Fewer than five scores yields 0.
func ImprovementRate(scores []int) float64 {
	if len(scores) < 5 {
		return 0
	}
	return MeanInt(scores[len(scores)-5:]) - MeanInt(scores[:5])
}

// MasteryLevel buckets an average score.
func MasteryLevel(avg float64) string {
	switch {
	case avg >= 90:
		return "expert"
	case avg >= 75:
		return "advanced"
	case avg >= 60:
		return "intermediate"
	case avg >= 40:
		return "beginner"
	default:
		return "novice"
	}
}

// ScoreDistribution counts scores into four quartile buckets.
func ScoreDistribution(scores []int) map[string]int {
	dist := map[string]int{"0-25": 0, "26-50": 0, "51-75": 0, "76-100": 0}
	for _, s := range scores {
		switch {
		case s <= 25:
			dist["0-25"]++
		case s <= 50:
			dist["26-50"]++
		case s <= 75:
			dist["51-75"]++
		default:
			dist["76-100"]++
		}
	}
	return dist
}

// LearningStyle infers a pace label from the time spent on recent quizzes.
func LearningStyle(timeSpent []int) string {
	if len(timeSpent) == 0 {
		return "balanced"
	}
	avg := MeanInt(timeSpent)
	switch {
	case avg > 300:
		return "reflective"
	case avg < 180:
		return "quick"
	default:
		return "balanced"
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
