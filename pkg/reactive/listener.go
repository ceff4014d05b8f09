package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Listener is anything that can be notified when a dependency changes.
// This interface is implemented by memos, effects, lenses and callback
// subscriptions.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	// For memos, this invalidates the cached value.
	// For effects, this re-runs the effect.
	// For subscriptions, this calls the subscriber with the new value.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Unsubscribe revokes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// funcListener adapts a callback to the Listener interface.
// Once revoked it ignores MarkDirty, so a subscriber removed while a
// notification is in flight is never called again.
type funcListener struct {
	id     uint64
	fn     func()
	active atomic.Bool
}

func newFuncListener(fn func()) *funcListener {
	l := &funcListener{id: nextID(), fn: fn}
	l.active.Store(true)
	return l
}

func (l *funcListener) MarkDirty() {
	if l.active.Load() {
		l.fn()
	}
}

func (l *funcListener) ID() uint64 {
	return l.id
}

// subscribeFunc subscribes fn to base and returns the revocation handle.
// Subscriptions made inside a scope are revoked when the scope is torn down.
func subscribeFunc(base *signalBase, fn func()) Unsubscribe {
	l := newFuncListener(fn)
	base.subscribe(l)

	var once atomic.Bool
	unsub := func() {
		if once.Swap(true) {
			return
		}
		l.active.Store(false)
		base.unsubscribe(l)
	}

	if owner := CurrentOwner(); owner != nil {
		owner.OnCleanup(unsub)
	}
	return unsub
}

// relay connects a derived value to a source it watches, forwarding
// both notification passes. Once revoked it ignores them.
type relay struct {
	id       uint64
	onStale  func(certain bool)
	onSettle func()
	active   atomic.Bool
}

func newRelay(onStale func(certain bool), onSettle func()) *relay {
	r := &relay{id: nextID(), onStale: onStale, onSettle: onSettle}
	r.active.Store(true)
	return r
}

func (r *relay) stale(certain bool) {
	if r.active.Load() {
		r.onStale(certain)
	}
}

func (r *relay) settle() {
	if r.active.Load() {
		r.onSettle()
	}
}

func (r *relay) MarkDirty() {
	r.stale(true)
	r.settle()
}

func (r *relay) ID() uint64 { return r.id }

var _ derived = (*relay)(nil)

// sourceSet records the primitives a computation read during its last
// run, so the computation can unsubscribe from all of them before the
// next run or when it is disposed.
type sourceSet struct {
	mu   sync.Mutex
	list []*signalBase
}

func (s *sourceSet) add(src *signalBase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.list, src) {
		s.list = append(s.list, src)
	}
}

// changed reports whether a derived source moved since it was marked
// stale. Plain signals are never asked: their writes mark readers
// dirty directly.
func (s *sourceSet) changed() bool {
	s.mu.Lock()
	list := slices.Clone(s.list)
	s.mu.Unlock()

	for _, src := range list {
		if src.refresh != nil && src.refresh() {
			return true
		}
	}
	return false
}

// release unsubscribes l from every recorded source and forgets them.
func (s *sourceSet) release(l Listener) {
	s.mu.Lock()
	list := s.list
	s.list = nil
	s.mu.Unlock()

	for _, src := range list {
		src.unsubscribe(l)
	}
}
