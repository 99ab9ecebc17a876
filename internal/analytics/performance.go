package analytics

import (
	"math"
	"time"

	"quizzed/internal/model"
)

const week = 7 * 24 * time.Hour

// WeekBucket aggregates the quizzes completed in one seven-day window.
type WeekBucket struct {
	Week         string `json:"week"`
	Quizzes      int    `json:"quizzes"`
	TotalScore   int    `json:"totalScore"`
	AverageScore int    `json:"averageScore"`
}

// Performance summarizes recent completed attempts.
type Performance struct {
	AverageScore     int          `json:"averageScore"`
	TotalQuizzes     int          `json:"totalQuizzes"`
	Improvement      int          `json:"improvement"`
	ConsistencyScore int          `json:"consistencyScore"`
	WeeklyData       []WeekBucket `json:"weeklyData"`
}

// Scores extracts scores in the order the attempts are given.
func Scores(attempts []model.QuizAttempt) []int {
	out := make([]int, 0, len(attempts))
	for i := range attempts {
		out = append(out, attempts[i].ScoreValue())
	}
	return out
}

// CompletionDates extracts completion timestamps, skipping unfinished attempts.
func CompletionDates(attempts []model.QuizAttempt) []time.Time {
	out := make([]time.Time, 0, len(attempts))
	for i := range attempts {
		if attempts[i].CompletedAt != nil {
			out = append(out, *attempts[i].CompletedAt)
		}
	}
	return out
}

// PerformanceOf summarizes attempts ordered oldest first.
func PerformanceOf(attempts []model.QuizAttempt, now time.Time) Performance {
	if len(attempts) == 0 {
		return Performance{WeeklyData: []WeekBucket{}}
	}

	scores := Scores(attempts)
	avg := MeanInt(scores)

	mid := len(scores) / 2
	var improvement float64
	if mid > 0 {
		improvement = MeanInt(scores[mid:]) - MeanInt(scores[:mid])
	}

	return Performance{
		AverageScore:     int(math.Round(avg)),
		TotalQuizzes:     len(attempts),
		Improvement:      int(math.Round(improvement)),
		ConsistencyScore: int(math.Round(ConsistencyScore(scores))),
		WeeklyData:       WeeklyData(attempts, now),
	}
}

// WeeklyData buckets attempts into the four seven-day windows ending at now,
// oldest window first. Each bucket is keyed by its start date.
func WeeklyData(attempts []model.QuizAttempt, now time.Time) []WeekBucket {
	buckets := make([]WeekBucket, 4)
	for i := range buckets {
		start := now.Add(-time.Duration(4-i) * week)
		buckets[i].Week = start.UTC().Format("2006-01-02")
	}

	for i := range attempts {
		at := attempts[i].CompletedAt
		if at == nil {
			continue
		}
		idx := int(now.Sub(*at) / week)
		if idx < 0 || idx > 3 {
			continue
		}
		b := &buckets[3-idx]
		b.Quizzes++
		b.TotalScore += attempts[i].ScoreValue()
	}

	for i := range buckets {
		if buckets[i].Quizzes > 0 {
			buckets[i].AverageScore = int(math.Round(float64(buckets[i].TotalScore) / float64(buckets[i].Quizzes)))
		}
	}
	return buckets
}

// Progress tracks long-term movement across all completed attempts.
type Progress struct {
	TotalProgress   int         `json:"totalProgress"`
	WeeklyProgress  int         `json:"weeklyProgress"`
	Streak          int         `json:"streak"`
	Milestones      []Milestone `json:"milestones"`
	TotalQuizzes    int         `json:"totalQuizzes"`
	ImprovementRate float64     `json:"improvementRate"`
}

// ProgressOf builds the progress section from all completed attempts ordered
// oldest first. totalQuizzes comes from the user's running stats.
func ProgressOf(attempts []model.QuizAttempt, totalQuizzes int, now time.Time) Progress {
	if len(attempts) == 0 {
		return Progress{Milestones: []Milestone{}}
	}

	scores := Scores(attempts)
	weekAgo := Since(now, 7)
	weekly := 0
	for i := range attempts {
		if at := attempts[i].CompletedAt; at != nil && !at.Before(weekAgo) {
			weekly++
		}
	}

	return Progress{
		TotalProgress:   scores[len(scores)-1] - scores[0],
		WeeklyProgress:  weekly,
		Streak:          Streak(CompletionDates(attempts), now),
		Milestones:      Milestones(totalQuizzes),
		TotalQuizzes:    len(attempts),
		ImprovementRate: ImprovementRate(scores),
	}
}

// TopicStats is the per-topic section of the analytics report.
type TopicStats struct {
	Scores    []int `json:"scores"`
	Attempts  int   `json:"attempts"`
	TotalTime int   `json:"totalTime"`
}

// Report is the detailed analytics view for a timeframe.
type Report struct {
	Overview struct {
		TotalQuizzes     int     `json:"totalQuizzes"`
		AverageScore     int     `json:"averageScore"`
		TotalTimeStudied int     `json:"totalTimeStudied"`
		ImprovementRate  float64 `json:"improvementRate"`
	} `json:"overview"`
	Performance struct {
		ScoreDistribution map[string]int `json:"scoreDistribution"`
		ConsistencyScore  int            `json:"consistencyScore"`
	} `json:"performance"`
	Topics map[string]*TopicStats `json:"topics"`
	Trends struct {
		Trend      string  `json:"trend"`
		TrendScore float64 `json:"trendScore"`
	} `json:"trends"`
	Streaks struct {
		CurrentStreak int `json:"currentStreak"`
		LongestStreak int `json:"longestStreak"`
	} `json:"streaks"`
	TimeAnalysis struct {
		AverageTimePerQuiz int `json:"averageTimePerQuiz"`
		TotalTimeStudied   int `json:"totalTimeStudied"`
	} `json:"timeAnalysis"`
}

// ReportOf builds the analytics report from attempts in the timeframe
// (oldest first). allDates are completion times across the user's whole
// history and feed the streak section.
func ReportOf(attempts []model.QuizAttempt, allDates []time.Time, now time.Time) Report {
	var r Report
	scores := Scores(attempts)

	totalTime := 0
	r.Topics = make(map[string]*TopicStats)
	for i := range attempts {
		a := &attempts[i]
		totalTime += a.TimeSpent
		ts, ok := r.Topics[a.TopicID]
		if !ok {
			ts = &TopicStats{Scores: []int{}}
			r.Topics[a.TopicID] = ts
		}
		ts.Scores = append(ts.Scores, a.ScoreValue())
		ts.Attempts++
		ts.TotalTime += a.TimeSpent
	}

	r.Overview.TotalQuizzes = len(attempts)
	r.Overview.AverageScore = int(math.Round(MeanInt(scores)))
	r.Overview.TotalTimeStudied = int(math.Round(float64(totalTime) / 3600))
	r.Overview.ImprovementRate = ImprovementRate(scores)

	r.Performance.ScoreDistribution = ScoreDistribution(scores)
	r.Performance.ConsistencyScore = int(math.Round(ConsistencyScore(scores)))

	r.Trends.Trend = Trend(scores)
	if len(scores) >= 2 {
		r.Trends.TrendScore = float64(scores[len(scores)-1] - scores[0])
	}

	r.Streaks.CurrentStreak = Streak(allDates, now)
	r.Streaks.LongestStreak = LongestStreak(allDates)

	if len(attempts) > 0 {
		r.TimeAnalysis.AverageTimePerQuiz = int(math.Round(float64(totalTime) / float64(len(attempts))))
	}
	r.TimeAnalysis.TotalTimeStudied = totalTime

	return r
}
