package delivery

import "sync"

// Serializer wraps a single consumer callback behind a mutual-exclusion
// lock. All methods are safe for concurrent use.
type Serializer[T any] struct {
	mu sync.Mutex
	fn func(T)
}

// New creates a serializer for the given consumer. A nil consumer is
// allowed; deliveries are dropped until one is set via Replace.
func New[T any](fn func(T)) *Serializer[T] {
	return &Serializer[T]{fn: fn}
}

// Deliver invokes the consumer with v. Concurrent callers are queued on
// the lock, so consumer invocations never overlap in time. When no
// consumer is set the value is dropped silently.
//
// The lock is held for the full duration of the consumer call. A slow
// consumer therefore blocks other producers, never corrupts them.
func (s *Serializer[T]) Deliver(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fn == nil {
		return
	}
	s.fn(v)
}

// Replace swaps the consumer. The swap happens under the same lock as
// Deliver, so an in-flight delivery completes against the old consumer
// before the new one can observe anything.
func (s *Serializer[T]) Replace(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fn = fn
}

// Clear removes the consumer. Subsequent deliveries are dropped until
// Replace installs a new one.
func (s *Serializer[T]) Clear() {
	s.Replace(nil)
}

// HasConsumer reports whether a consumer is currently set.
func (s *Serializer[T]) HasConsumer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fn != nil
}
