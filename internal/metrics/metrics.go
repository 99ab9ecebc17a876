// Package metrics holds the domain counters exported at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Domain counts quiz and tutor events. A nil *Domain records nothing.
type Domain struct {
	quizCompleted  *prometheus.CounterVec
	aiExplanations *prometheus.CounterVec
}

// NewDomain registers the domain counters on reg.
func NewDomain(reg prometheus.Registerer) (*Domain, error) {
	d := &Domain{
		quizCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_completed_total",
				Help: "Quizzes completed, by topic.",
			},
			[]string{"topic"},
		),
		aiExplanations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_explanations_total",
				Help: "Explanations served, by source (llm or fallback).",
			},
			[]string{"source"},
		),
	}
	for _, c := range []prometheus.Collector{d.quizCompleted, d.aiExplanations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Domain) QuizCompleted(topic string) {
	if d == nil {
		return
	}
	d.quizCompleted.WithLabelValues(topic).Inc()
}

func (d *Domain) Explanation(source string) {
	if d == nil {
		return
	}
	d.aiExplanations.WithLabelValues(source).Inc()
}
