package service

import (
	"regexp"
	"strings"

	"quizzed/internal/model"
)

var topicDescriptions = map[string]string{
	"mathematics": "Algebra, Calculus, Geometry, Statistics",
	"science":     "Physics, Chemistry, Biology, Earth Science",
	"history":     "World History, Ancient Civilizations, Modern Events",
	"literature":  "Classic Literature, Poetry, Literary Analysis",
	"geography":   "World Geography, Countries, Capitals, Physical Features",
	"programming": "JavaScript, Python, Algorithms, Data Structures",
	"english":     "Grammar, Vocabulary, Reading Comprehension",
	"art":         "Art History, Techniques, Famous Artists",
	"music":       "Music Theory, Composers, Musical Instruments",
	"philosophy":  "Logic, Ethics, Metaphysics, Famous Philosophers",
}

var topicIcons = map[string]string{
	"mathematics": "fas fa-calculator",
	"science":     "fas fa-atom",
	"history":     "fas fa-landmark",
	"literature":  "fas fa-book",
	"geography":   "fas fa-globe",
	"programming": "fas fa-code",
	"english":     "fas fa-language",
	"art":         "fas fa-palette",
	"music":       "fas fa-music",
	"philosophy":  "fas fa-brain",
}

var whitespace = regexp.MustCompile(`\s+`)

// Topic is one entry of the public topic catalog.
type Topic struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	QuestionCount int      `json:"questionCount"`
	Difficulty    string   `json:"difficulty"`
	Subjects      []string `json:"subjects"`
}

// TopicSlug lowercases a topic and joins whitespace runs with hyphens.
func TopicSlug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

// TopicTitle turns "computer-science" into "Computer Science".
func TopicTitle(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func topicDescription(name string) string {
	if d, ok := topicDescriptions[name]; ok {
		return d
	}
	return "Comprehensive questions on this subject"
}

func topicIcon(name string) string {
	if i, ok := topicIcons[name]; ok {
		return i
	}
	return "fas fa-question-circle"
}

// topicDifficulty rates a topic by its hardest question.
func topicDifficulty(difficulties []string) string {
	has := func(d string) bool {
		for _, x := range difficulties {
			if x == d {
				return true
			}
		}
		return false
	}
	switch {
	case has(model.DifficultyHard):
		return model.DifficultyHard
	case has(model.DifficultyMedium):
		return model.DifficultyMedium
	}
	return model.DifficultyEasy
}

func topicFromSummary(s model.TopicSummary) Topic {
	subjects := s.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return Topic{
		ID:            TopicSlug(s.Name),
		Name:          TopicTitle(s.Name),
		Description:   topicDescription(s.Name),
		Icon:          topicIcon(s.Name),
		QuestionCount: s.QuestionCount,
		Difficulty:    topicDifficulty(s.Difficulties),
		Subjects:      subjects,
	}
}
