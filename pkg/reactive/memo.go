package reactive

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Memo is a derived value. Its function runs on the first read, and on
// the first read after one of the values it read last time changes; in
// between, reads return the cached result. A burst of writes costs one
// recomputation. The function must be pure, since it may run any number
// of times.
//
// A memo is itself a source: other memos, lenses, effects and
// subscribers can depend on it, which is how chains of derived values
// are built. A memo with subscribers recomputes as soon as a dependency
// changes and notifies them only when the result differs from the one
// they last saw.
type Memo[T any] struct {
	base    signalBase
	compute func() T
	equal   func(T, T) bool
	opts    signalOptions

	// valueMu guards value, delivered and pending.
	valueMu sync.RWMutex
	value   T

	// delivered is the value subscribers saw before the change that is
	// still being settled.
	delivered T
	pending   bool

	// valid is cleared by stale and set again once the value is known
	// to be current. dirty records that a source certainly changed, so
	// the next read must recompute instead of checking its sources.
	valid atomic.Bool
	dirty atomic.Bool

	deps     sourceSet
	disposed atomic.Bool
}

// NewMemo wraps compute in a memo owned by the current scope. Nothing
// runs until the first read.
func NewMemo[T any](compute func() T, opts ...SignalOption) *Memo[T] {
	options := applyOptions(opts)
	m := &Memo[T]{
		base:    newSignalBase(KindMemo, options.name),
		compute: compute,
		opts:    options,
	}
	m.base.refresh = m.refresh
	m.dirty.Store(true)
	if m.base.owner != nil {
		m.base.owner.OnCleanup(m.Dispose)
	}
	return m
}

// Get returns the memo value and subscribes the current listener to it.
// It panics with ErrCyclicDependency when the memo reads itself while
// computing and with ErrUseAfterTeardown once disposed.
func (m *Memo[T]) Get() T {
	v := m.Peek()
	m.base.track()
	return v
}

// TryGet is like Get but returns the contract violation as an error.
func (m *Memo[T]) TryGet() (value T, err error) {
	err = Catch(func() { value = m.Get() })
	return value, err
}

// Peek returns the memo value without subscribing, recomputing it first
// when it is stale.
func (m *Memo[T]) Peek() T {
	m.checkUsable()
	if !m.valid.Load() {
		m.revalidate()
	}
	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// Subscribe calls fn with the recomputed value whenever it changes. The
// memo is computed once up front so its dependencies are known.
func (m *Memo[T]) Subscribe(fn func(T)) Unsubscribe {
	m.Peek()
	return subscribeFunc(&m.base, func() { fn(m.Peek()) })
}

// WithEquals replaces the equality that decides whether a recomputed
// value is a change worth notifying. It returns m.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

// MarkDirty invalidates the cached value and settles the change at once.
func (m *Memo[T]) MarkDirty() {
	m.stale(true)
	m.settle()
}

// stale invalidates the cached value and marks everything derived from
// the memo as possibly stale. Only the first call after a computation
// propagates.
func (m *Memo[T]) stale(certain bool) {
	if certain {
		m.dirty.Store(true)
	}
	if !m.valid.CompareAndSwap(true, false) {
		return
	}
	m.valueMu.Lock()
	if !m.pending {
		m.delivered = m.value
		m.pending = true
	}
	m.valueMu.Unlock()
	m.base.markStale(false)
}

// settle is called when a source delivered a change. A memo with
// subscribers recomputes and notifies them when the result differs from
// what they last saw; without subscribers it stays lazy.
func (m *Memo[T]) settle() {
	if !m.valid.Load() {
		m.dirty.Store(true)
	}

	m.valueMu.RLock()
	pending, prev := m.pending, m.delivered
	m.valueMu.RUnlock()
	if !pending {
		return
	}

	if m.disposed.Load() || !m.base.alive() || m.base.subscriberCount() == 0 {
		m.clearPending()
		return
	}
	next := m.Peek()
	m.clearPending()
	if m.opts.alwaysNotify || !m.equals(prev, next) {
		m.base.deliver()
	}
}

func (m *Memo[T]) clearPending() {
	var zero T
	m.valueMu.Lock()
	m.pending = false
	m.delivered = zero
	m.valueMu.Unlock()
}

// refresh brings the memo up to date and reports whether its value moved
// since it was marked stale.
func (m *Memo[T]) refresh() bool {
	m.valueMu.RLock()
	pending, prev := m.pending, m.delivered
	m.valueMu.RUnlock()
	if !pending || m.disposed.Load() || !m.base.alive() {
		return false
	}
	return m.opts.alwaysNotify || !m.equals(prev, m.Peek())
}

// revalidate recomputes the memo unless it was only marked stale and
// none of its derived sources turned out to have changed.
func (m *Memo[T]) revalidate() {
	if m.dirty.Load() || m.deps.changed() {
		m.recompute()
		return
	}
	m.valid.Store(true)
}

// ID returns the memo id.
func (m *Memo[T]) ID() uint64 { return m.base.id }

// Name returns the memo name, or "" if it has none.
func (m *Memo[T]) Name() string { return m.base.name }

// Dispose unsubscribes the memo from its sources. Reads afterwards fail
// with ErrUseAfterTeardown.
func (m *Memo[T]) Dispose() {
	if m.disposed.Swap(true) {
		return
	}
	m.deps.release(m)
	m.valid.Store(false)
}

func (m *Memo[T]) addSource(src *signalBase) { m.deps.add(src) }

func (m *Memo[T]) checkUsable() {
	if m.disposed.Load() {
		raise(m.base.owner, teardownError(string(KindMemo), m.base.name, m.base.id))
	}
	m.base.mustBeAlive()
}

// label names the memo in cycle reports.
func (m *Memo[T]) label() string {
	if m.base.name != "" {
		return m.base.name
	}
	return fmt.Sprintf("memo#%d", m.base.id)
}

// recompute re-collects the sources and refreshes the cached value.
func (m *Memo[T]) recompute() {
	t, release := enter()
	defer release()
	if cycle, ok := t.push(m.base.id, m.label()); !ok {
		raise(m.base.owner, cyclicDependencyError(cycle))
	}
	defer t.pop()

	m.deps.release(m)

	start := time.Now()
	var next T
	WithListener(m, func() { next = m.compute() })

	m.valueMu.Lock()
	m.value = next
	m.valueMu.Unlock()
	m.dirty.Store(false)
	m.valid.Store(true)

	if obs := m.base.owner.observer(); obs != nil {
		obs.MemoComputed(m.base.info(), time.Since(start))
	}
}

var (
	_ sourceTracker = (*Memo[int])(nil)
	_ derived       = (*Memo[int])(nil)
)
