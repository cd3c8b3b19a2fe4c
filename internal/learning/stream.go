package learning

import (
	"context"
	"sync"
	"sync/atomic"
)

// InMemoryStream はインメモリで Stream を実現します。
// goroutine-safeです。
type InMemoryStream[T any] struct {
	mu      sync.RWMutex
	subs    map[chan T]struct{}
	bufSize int
	dropped atomic.Uint64
}

// NewInMemoryStream は新しいInMemoryStreamを生成します。
func NewInMemoryStream[T any](bufferSize int) *InMemoryStream[T] {
	return &InMemoryStream[T]{
		subs:    make(map[chan T]struct{}),
		bufSize: bufferSize,
	}
}

// Publishは値をストリームに発行します。
// 登録されている全てのsubscriberに送信し、詰まっているsubscriberの分は捨てます。
func (s *InMemoryStream[T]) Publish(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for sub := range s.subs {
		select {
		case sub <- v:
		default:
			// subscriberが詰まっている場合はブロックしない
			s.dropped.Add(1)
		}
	}
	return nil
}

// Subscribeはストリームから値を受け取るためのチャネルを返します。
// ctx がキャンセルされるとunsubscribeされ、チャネルは閉じられます。
func (s *InMemoryStream[T]) Subscribe(ctx context.Context) (<-chan T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, s.bufSize)
	s.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, ch)
		close(ch)
	}()

	return ch, nil
}

// Subscribers は現在の購読者数を返します。
func (s *InMemoryStream[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Dropped は詰まった購読者に届けられずに捨てた件数の累計を返します。
func (s *InMemoryStream[T]) Dropped() uint64 {
	return s.dropped.Load()
}
