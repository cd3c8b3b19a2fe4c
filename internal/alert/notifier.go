// Package alert handles sending notifications about model quality.
package alert

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier is the interface for sending alert messages.
type Notifier interface {
	Send(message string) error
	Close() error
}

// NoOpNotifier is a notifier that does nothing. It is used when alerting is disabled.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send does nothing and returns nil.
func (n *NoOpNotifier) Send(message string) error {
	return nil
}

// Close does nothing and returns nil.
func (n *NoOpNotifier) Close() error {
	return nil
}

// LogNotifier writes alerts to a zap logger at warn level and keeps a count
// of what it has sent.
type LogNotifier struct {
	logger *zap.Logger

	mu     sync.Mutex
	sent   int
	closed bool
}

// NewLogNotifier creates a LogNotifier. A nil logger falls back to a no-op logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("alert")}
}

// Send logs the message. Messages sent after Close are dropped.
func (n *LogNotifier) Send(message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.sent++
	n.logger.Warn("Model alert", zap.String("message", message), zap.Int("seq", n.sent))
	return nil
}

// Sent returns the number of alerts logged so far.
func (n *LogNotifier) Sent() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

// Close flushes the logger and stops further alerts.
func (n *LogNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	// Sync fails on stderr/stdout on some platforms; nothing useful to do about it.
	_ = n.logger.Sync()
	return nil
}
