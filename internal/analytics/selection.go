package analytics

import (
	"math/rand"

	"quizzed/internal/model"
)

// History is a learner's recent record on one topic.
type History struct {
	AverageScore  float64 `json:"averageScore"`
	TotalAttempts int     `json:"totalAttempts"`
}

// HistoryOf summarizes completed attempts.
func HistoryOf(attempts []model.QuizAttempt) History {
	return History{
		AverageScore:  MeanInt(Scores(attempts)),
		TotalAttempts: len(attempts),
	}
}

// Mix splits count into easy/medium/hard shares based on the learner's
// average score. Hard always takes the remainder.
func Mix(avg float64, count int) (easy, medium, hard int) {
	var e, m float64
	switch {
	case avg >= 80:
		e, m = 0.2, 0.3
	case avg >= 60:
		e, m = 0.3, 0.5
	default:
		e, m = 0.5, 0.4
	}
	easy = int(float64(count) * e)
	medium = int(float64(count) * m)
	hard = count - easy - medium
	return easy, medium, hard
}

// SelectQuestions picks up to count questions from pool. Learners without
// history get a plain random sample; everyone else gets a difficulty mix
// tuned to their average score. Buckets that run short are back-filled from
// the remaining questions so the quiz is as long as the pool allows.
func SelectQuestions(pool []model.Question, h History, count int, rng *rand.Rand) []model.Question {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	shuffled := make([]model.Question, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	if count > len(shuffled) {
		count = len(shuffled)
	}
	if h.TotalAttempts == 0 {
		return shuffled[:count]
	}

	picked := make([]bool, len(shuffled))
	out := make([]model.Question, 0, count)
	take := func(difficulty string, n int) {
		for i := range shuffled {
			if n == 0 {
				return
			}
			if !picked[i] && shuffled[i].Difficulty == difficulty {
				picked[i] = true
				out = append(out, shuffled[i])
				n--
			}
		}
	}

	easy, medium, hard := Mix(h.AverageScore, count)
	take(model.DifficultyEasy, easy)
	take(model.DifficultyMedium, medium)
	take(model.DifficultyHard, hard)

	for i := range shuffled {
		if len(out) >= count {
			break
		}
		if !picked[i] {
			picked[i] = true
			out = append(out, shuffled[i])
		}
	}
	return out
}
