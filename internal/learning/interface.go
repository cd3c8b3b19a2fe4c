package learning

import "context"

// Streamは値を複数の購読者に配信するストリームのインターフェースです。
type Stream[T any] interface {
	// Publishは値をストリームに発行します。
	Publish(ctx context.Context, v T) error
	// Subscribeはストリームから値を受け取るためのチャネルを返します。
	Subscribe(ctx context.Context) (<-chan T, error)
}
