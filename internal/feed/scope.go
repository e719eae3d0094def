package feed

import "sync"

// Scope ties a set of subscriptions to a lifetime, mirroring a screen's
// visible scope in the mobile client. Close cancels every owned
// subscription before returning, and one-shot results applied through the
// scope after Close are discarded instead of mutating dead state.
type Scope struct {
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// NewScope creates an open scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add registers a subscription with the scope. If the scope is already
// closed the subscription is cancelled immediately.
func (s *Scope) Add(sub *Subscription) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// Apply runs fn only while the scope is open. It is the delivery path for
// one-shot operation results (fetches, uploads) whose owning scope may have
// closed while they were pending. Reports whether fn ran.
func (s *Scope) Apply(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Close cancels all owned subscriptions. It returns only after every
// subscription's in-flight callback has drained, so callers may tear down
// the state those callbacks touch as soon as Close returns.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
