package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAbandoner struct {
	n     int64
	err   error
	grace time.Duration
	calls int
}

func (f *fakeAbandoner) AbandonStale(_ context.Context, grace time.Duration) (int64, error) {
	f.calls++
	f.grace = grace
	return f.n, f.err
}

func TestNewSweeper_InvalidSpec(t *testing.T) {
	_, err := NewSweeper(&fakeAbandoner{}, "every tuesday", time.Minute, zap.NewNop())
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	t.Run("logs abandoned count", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		fa := &fakeAbandoner{n: 3}
		s, err := NewSweeper(fa, "*/10 * * * *", 30*time.Minute, zap.New(core))
		require.NoError(t, err)

		assert.Equal(t, int64(3), s.Sweep(context.Background()))
		assert.Equal(t, 30*time.Minute, fa.grace)

		entries := logs.FilterMessage("abandoned stale quiz attempts").All()
		require.Len(t, entries, 1)
		assert.Equal(t, int64(3), entries[0].ContextMap()["count"])
	})

	t.Run("quiet when nothing to do", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		s, err := NewSweeper(&fakeAbandoner{}, "@every 1m", time.Minute, zap.New(core))
		require.NoError(t, err)

		assert.Zero(t, s.Sweep(context.Background()))
		assert.Zero(t, logs.Len())
	})

	t.Run("logs failures", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		s, err := NewSweeper(&fakeAbandoner{err: errors.New("db down")}, "@hourly", time.Minute, zap.New(core))
		require.NoError(t, err)

		assert.Zero(t, s.Sweep(context.Background()))
		assert.Equal(t, 1, logs.FilterMessage("abandon sweep failed").Len())
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, err := NewSweeper(&fakeAbandoner{}, "@hourly", time.Minute, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
