// Package dashboard holds the state served to dashboard clients: the most
// recent training result and a feed of new ones.
package dashboard

import (
	"context"
	"sync"

	"github.com/your-org/airq-dashboard/internal/learning"
	"go.uber.org/zap"
)

const subscriberBuffer = 8

// State keeps the latest TrainingResult. It is safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	latest *learning.TrainingResult

	updates *learning.InMemoryStream[learning.TrainingResult]
	logger  *zap.Logger
}

// NewState creates an empty State.
func NewState(logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		updates: learning.NewInMemoryStream[learning.TrainingResult](subscriberBuffer),
		logger:  logger,
	}
}

// Latest returns the most recent result, or false before the first one.
func (s *State) Latest() (learning.TrainingResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return learning.TrainingResult{}, false
	}
	return *s.latest, true
}

// Update replaces the latest result and notifies subscribers.
func (s *State) Update(ctx context.Context, result learning.TrainingResult) error {
	s.mu.Lock()
	s.latest = &result
	s.mu.Unlock()

	s.logger.Debug("Dashboard state updated", zap.String("version", result.Version))
	return s.updates.Publish(ctx, result)
}

// Subscribe returns a channel of results published after the call. The
// channel is closed when ctx is done.
func (s *State) Subscribe(ctx context.Context) (<-chan learning.TrainingResult, error) {
	return s.updates.Subscribe(ctx)
}

// Run copies results into the state until ctx is done or results is closed.
func (s *State) Run(ctx context.Context, results <-chan learning.TrainingResult) {
	for {
		select {
		case result, ok := <-results:
			if !ok {
				return
			}
			if err := s.Update(ctx, result); err != nil {
				s.logger.Warn("Failed to publish dashboard update", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
