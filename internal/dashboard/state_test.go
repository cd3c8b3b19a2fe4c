package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/airq-dashboard/internal/learning"
)

func TestState_LatestBeforeUpdate(t *testing.T) {
	s := NewState(nil)
	_, ok := s.Latest()
	assert.False(t, ok)
}

func TestState_UpdateAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewState(nil)
	sub, err := s.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, learning.TrainingResult{Version: "model-a"}))

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "model-a", latest.Version)

	select {
	case got := <-sub:
		assert.Equal(t, "model-a", got.Version)
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestState_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewState(nil)
	results := make(chan learning.TrainingResult)
	done := make(chan struct{})
	go func() {
		s.Run(ctx, results)
		close(done)
	}()

	results <- learning.TrainingResult{Version: "model-1"}
	results <- learning.TrainingResult{Version: "model-2"}

	assert.Eventually(t, func() bool {
		latest, ok := s.Latest()
		return ok && latest.Version == "model-2"
	}, time.Second, 5*time.Millisecond)

	close(results)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
}

func TestState_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewState(nil)
	done := make(chan struct{})
	go func() {
		s.Run(ctx, make(chan learning.TrainingResult))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
