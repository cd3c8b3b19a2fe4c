// Package ringbuffer provides a fixed-capacity circular buffer.
package ringbuffer

// RingBuffer holds the most recent values in a circular buffer.
// It is not safe for concurrent use.
type RingBuffer[T any] struct {
	items []T
	size  int
	head  int // Points to the next available slot for writing
	count int // Number of elements currently in the buffer
}

// New creates a new RingBuffer with the given capacity.
func New[T any](size int) *RingBuffer[T] {
	if size <= 0 {
		panic("ring buffer size must be positive")
	}
	return &RingBuffer[T]{
		items: make([]T, size),
		size:  size,
	}
}

// Add adds a value to the RingBuffer.
// If the buffer is full, the oldest value is overwritten.
func (rb *RingBuffer[T]) Add(v T) {
	rb.items[rb.head] = v
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	}
}

// Len returns the number of values currently held.
func (rb *RingBuffer[T]) Len() int { return rb.count }

// Cap returns the capacity.
func (rb *RingBuffer[T]) Cap() int { return rb.size }

// Items returns a copy of the values in the order they were added.
func (rb *RingBuffer[T]) Items() []T {
	result := make([]T, rb.count)
	if rb.count < rb.size { // Buffer not yet full
		copy(result, rb.items[:rb.head])
		return result
	}
	// Oldest element is at rb.head
	copied := copy(result, rb.items[rb.head:])
	copy(result[copied:], rb.items[:rb.head])
	return result
}

// Reset empties the buffer.
func (rb *RingBuffer[T]) Reset() {
	var zero T
	for i := range rb.items {
		rb.items[i] = zero
	}
	rb.head, rb.count = 0, 0
}
