package circularbuffer

import "sync"

// CircularBuffer keeps the last len(values) pushed elements, overwriting
// the oldest once full.
type CircularBuffer[T any] struct {
	values   []T
	position int
	full     bool
	mu       sync.Mutex
}

// New creates a buffer holding up to size elements. A size below 1 gives a
// buffer that keeps nothing.
func New[T any](size int) *CircularBuffer[T] {
	if size < 0 {
		size = 0
	}
	v := make([]T, size)

	return &CircularBuffer[T]{
		values:   v,
		position: 0,
	}
}

func (cb *CircularBuffer[T]) Push(element T) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if len(cb.values) == 0 {
		return
	}

	cb.values[cb.position] = element
	cb.position++

	if cb.position >= len(cb.values) {
		cb.position = 0
		cb.full = true
	}
}

// Len returns how many elements the buffer currently holds.
func (cb *CircularBuffer[T]) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.length()
}

func (cb *CircularBuffer[T]) length() int {
	if cb.full {
		return len(cb.values)
	}
	return cb.position
}

// Each iterates over all elements in the buffer in the order they were inserted
func (cb *CircularBuffer[T]) Each(fn func(T)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.each(fn)
}

func (cb *CircularBuffer[T]) each(fn func(T)) {
	i := 0
	if cb.full {
		i = cb.position
	}

	for n := 0; n < cb.length(); n++ {
		fn(cb.values[i])

		i++
		if i >= len(cb.values) {
			i = 0
		}
	}
}

// Slice returns the elements oldest first.
func (cb *CircularBuffer[T]) Slice() []T {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	out := make([]T, 0, cb.length())
	cb.each(func(v T) {
		out = append(out, v)
	})
	return out
}
