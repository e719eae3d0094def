package feed

import "sync"

// Merger holds the most recently decoded value of one feed. It is a single
// mutable slot, not a history: writes are last-write-wins, which is safe
// because every delivery is a full snapshot. Writes come from the
// subscription callback path; reads may happen from any goroutine.
type Merger[T any] struct {
	decode func(raw any) T

	mu        sync.RWMutex
	latest    T
	delivered bool
}

// NewMerger creates a Merger around a total decode function. Before the
// first delivery Latest returns the zero/unknown record.
func NewMerger[T any](decode func(raw any) T) *Merger[T] {
	return &Merger[T]{decode: decode}
}

// Apply decodes a raw delivery and replaces the slot.
func (m *Merger[T]) Apply(raw any) {
	value := m.decode(raw)
	m.mu.Lock()
	m.latest = value
	m.delivered = true
	m.mu.Unlock()
}

// Latest returns the most recently decoded value.
func (m *Merger[T]) Latest() T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// Delivered reports whether at least one delivery has been applied.
func (m *Merger[T]) Delivered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.delivered
}

// Sink returns a Sink that applies deliveries to the merger and forwards
// them to next, if non-nil. Errors go to next untouched; a delivery error
// never clears the last good value.
func (m *Merger[T]) Sink(next Sink) Sink {
	return FuncSink{
		Value: func(raw any) {
			m.Apply(raw)
			if next != nil {
				next.OnValue(raw)
			}
		},
		Error: func(err error) {
			if next != nil {
				next.OnError(err)
			}
		},
	}
}
