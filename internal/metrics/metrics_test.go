package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := NewDomain(reg)
	require.NoError(t, err)

	d.QuizCompleted("science")
	d.QuizCompleted("science")
	d.Explanation("fallback")

	assert.Equal(t, 2.0, testutil.ToFloat64(d.quizCompleted.WithLabelValues("science")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.aiExplanations.WithLabelValues("fallback")))

	_, err = NewDomain(reg)
	assert.Error(t, err, "registering twice on one registry fails")
}

func TestDomain_Nil(t *testing.T) {
	var d *Domain
	assert.NotPanics(t, func() {
		d.QuizCompleted("x")
		d.Explanation("llm")
	})
}
