// Package feed implements standing subscriptions over a realtime data
// service: full-snapshot deliveries, per-subscription cancellation with
// in-flight suppression, and last-write-wins merging into typed local state.
package feed

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives deliveries for one subscription. Exactly one of the two
// methods is invoked per event. Errors are delivered once and the
// subscription does not retry on its own; retry policy belongs to the caller.
type Sink interface {
	OnValue(value any)
	OnError(err error)
}

// FuncSink adapts plain closures to the Sink interface. Nil members are
// skipped.
type FuncSink struct {
	Value func(value any)
	Error func(err error)
}

func (s FuncSink) OnValue(value any) {
	if s.Value != nil {
		s.Value(value)
	}
}

func (s FuncSink) OnError(err error) {
	if s.Error != nil {
		s.Error(err)
	}
}

// RealtimeService is the subscribe/notify and request/response surface of
// the remote realtime database. Subscribe delivers the full current value
// at path on every remote change (never a diff); the returned cancel
// function stops backend delivery. Push allocates a server-assigned child
// id under path without writing anything.
type RealtimeService interface {
	Subscribe(ctx context.Context, path string, sink Sink) (cancel func(), err error)
	Get(ctx context.Context, path string) (any, error)
	Set(ctx context.Context, path string, value any) error
	Push(ctx context.Context, path string) (string, error)
}

// Subscription is one standing feed. Independent of any other subscription
// to the same path; cancelling one never affects the others.
type Subscription struct {
	path   string
	cancel func()

	mu     sync.Mutex
	closed bool
}

// Cancel stops delivery. It blocks until any in-flight callback has
// returned, so once Cancel returns no further callback can touch the
// subscriber's state.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Path reports the remote path this subscription listens on.
func (s *Subscription) Path() string { return s.path }

// Feed creates subscriptions against a realtime service, wrapping each sink
// so deliveries after cancellation are suppressed.
type Feed struct {
	svc    RealtimeService
	logger *slog.Logger
}

// New creates a Feed over the given realtime service.
func New(svc RealtimeService, logger *slog.Logger) *Feed {
	return &Feed{svc: svc, logger: logger}
}

// Subscribe opens a standing subscription on path. Deliveries for a single
// subscription arrive in backend order; deliveries across subscriptions
// have no relative ordering guarantee.
func (f *Feed) Subscribe(ctx context.Context, path string, sink Sink) (*Subscription, error) {
	sub := &Subscription{path: path}

	guarded := FuncSink{
		Value: func(value any) {
			sub.mu.Lock()
			defer sub.mu.Unlock()
			if sub.closed {
				return
			}
			sink.OnValue(value)
		},
		Error: func(err error) {
			sub.mu.Lock()
			defer sub.mu.Unlock()
			if sub.closed {
				return
			}
			f.logger.Warn("feed delivery error", "path", path, "error", err)
			sink.OnError(err)
		},
	}

	cancel, err := f.svc.Subscribe(ctx, path, guarded)
	if err != nil {
		return nil, err
	}
	sub.cancel = cancel
	return sub, nil
}
