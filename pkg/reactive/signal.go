package reactive

import (
	"reflect"
	"slices"
	"sync"
)

// Kind identifies the primitive a signalBase belongs to.
type Kind string

const (
	KindSignal Kind = "signal"
	KindMemo   Kind = "memo"
	KindLens   Kind = "lens"
	KindList   Kind = "list"
)

// signalBase is the untyped half of every primitive: identity, owning
// scope and the ordered subscriber list. Signal, Memo and Lens embed it.
type signalBase struct {
	id   uint64
	kind Kind
	name string

	// owner is the scope the primitive was created in; nil for free
	// standing primitives that are never torn down.
	owner *Owner

	// subs are the listeners subscribed to this signal, in subscription order.
	subs []Listener

	subMu sync.RWMutex

	// refresh is set by derived primitives. It reports whether the value
	// differs from the one held when the primitive was last marked stale.
	refresh func() bool
}

func newSignalBase(kind Kind, name string) signalBase {
	return signalBase{
		id:    nextID(),
		kind:  kind,
		name:  name,
		owner: CurrentOwner(),
	}
}

// info describes the primitive for observers.
func (s *signalBase) info() Info {
	return Info{ID: s.id, Name: s.name, Kind: s.kind}
}

// alive reports whether the owning scope is still mounted.
func (s *signalBase) alive() bool {
	return s.owner == nil || !s.owner.IsDisposed()
}

// mustBeAlive panics with ErrUseAfterTeardown if the owning scope is gone.
func (s *signalBase) mustBeAlive() {
	if !s.alive() {
		raise(s.owner, teardownError(string(s.kind), s.name, s.id))
	}
}

// indexOf returns the position of the listener with id, or -1.
// The caller holds subMu.
func (s *signalBase) indexOf(id uint64) int {
	for i, l := range s.subs {
		if l.ID() == id {
			return i
		}
	}
	return -1
}

// subscribe appends l unless a listener with the same id is present.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.indexOf(l.ID()) < 0 {
		s.subs = append(s.subs, l)
	}
}

// unsubscribe removes a listener, keeping the order of the others.
func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	// A fresh slice keeps snapshots taken by in-flight notifications intact.
	if i := s.indexOf(l.ID()); i >= 0 {
		s.subs = slices.Concat(s.subs[:i:i], s.subs[i+1:])
	}
}

// subscriberCount returns the number of current subscribers.
func (s *signalBase) subscriberCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// track subscribes the current listener, if any, to this signal.
func (s *signalBase) track() {
	t := lookup()
	if t == nil || t.listener == nil {
		return
	}
	listener := t.listener
	s.subscribe(listener)
	if st, ok := listener.(sourceTracker); ok {
		st.addSource(s)
	}
}

// snapshot copies the subscriber list so callbacks may subscribe or
// unsubscribe while a notification is delivered.
func (s *signalBase) snapshot() []Listener {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return slices.Clone(s.subs)
}

// derived is implemented by listeners that are themselves sources. A
// change reaches them in two passes: stale marks the whole downstream
// graph out of date before any callback runs, then settle recomputes
// and passes the change on only when the derived value moved.
//
// stale is told whether the source is known to have changed. A plain
// signal write is; a memo or lens upstream only may have, and a
// derived value reading it settles that question when it is next read.
type derived interface {
	Listener
	stale(certain bool)
	settle()
}

// changed notifies the subscribers of a committed write: every derived
// value downstream is marked stale first, so no subscriber can observe
// a memo or lens that still reflects the old value.
func (s *signalBase) changed() {
	s.markStale(true)
	s.deliver()
}

// markStale runs the first pass over the derived subscribers.
func (s *signalBase) markStale(certain bool) {
	for _, sub := range s.snapshot() {
		if d, ok := sub.(derived); ok {
			d.stale(certain)
		}
	}
}

// deliver runs the second pass, deferred to the end of the batch when
// one is open on this goroutine.
func (s *signalBase) deliver() {
	subs := s.snapshot()

	if obs := s.owner.observer(); obs != nil {
		obs.SignalNotified(s.info(), len(subs))
	}

	if t := lookup(); t != nil && t.batching() {
		for _, sub := range subs {
			t.enqueue(sub)
		}
		return
	}

	for _, sub := range subs {
		notify(sub)
	}
}

// notify settles a derived listener and marks any other listener dirty.
func notify(l Listener) {
	if d, ok := l.(derived); ok {
		d.settle()
		return
	}
	l.MarkDirty()
}

// sourceTracker is implemented by listeners that record their sources
// so they can drop them before recomputing.
type sourceTracker interface {
	Listener
	addSource(source *signalBase)
}

// Signal is a reactive value container.
// Reading a Signal's value during a tracked context (memo computation,
// effect execution, or a render wrapped in WithListener) automatically
// subscribes the current listener to receive notifications when the
// value changes.
//
// A write that stores a value equal to the current one does not notify
// (see WithEquals and AlwaysNotify).
type Signal[T any] struct {
	base signalBase

	// value is the current signal value.
	value T

	// mu protects the value and version.
	mu sync.RWMutex

	// version counts committed writes.
	version uint64

	// equal is the equality function used to determine if the value changed.
	// If nil, uses default equality checking.
	equal func(T, T) bool

	opts signalOptions
}

// NewSignal creates a new signal with the given initial value.
// The signal belongs to the current scope, if any.
func NewSignal[T any](initial T, opts ...SignalOption) *Signal[T] {
	options := applyOptions(opts)
	s := &Signal[T]{
		base:  newSignalBase(KindSignal, options.name),
		value: initial,
		opts:  options,
	}
	if options.persistKey != "" && s.base.owner != nil {
		s.base.owner.register(options.persistKey, s)
	}
	return s
}

// Get returns the current value and subscribes the current listener.
// It panics with ErrUseAfterTeardown if the owning scope is torn down.
func (s *Signal[T]) Get() T {
	s.base.mustBeAlive()

	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock to prevent deadlock.
	s.base.track()
	return value
}

// TryGet is like Get but returns ErrUseAfterTeardown instead of panicking.
func (s *Signal[T]) TryGet() (value T, err error) {
	err = Catch(func() { value = s.Get() })
	return value, err
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies subscribers if the value changed.
func (s *Signal[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// TrySet is like Set but returns ErrUseAfterTeardown instead of panicking.
func (s *Signal[T]) TrySet(value T) error {
	return Catch(func() { s.Set(value) })
}

// Update replaces the value with fn applied to the current one. fn runs
// without the signal locked, so it may read this signal or a lens over
// it; when a concurrent write lands first fn is called again with the
// newer value. fn must therefore be free of side effects.
// Subscribers are notified after the write is committed.
func (s *Signal[T]) Update(fn func(T) T) {
	s.base.mustBeAlive()

	for {
		s.mu.RLock()
		oldValue, version := s.value, s.version
		s.mu.RUnlock()

		newValue := fn(oldValue)

		s.mu.Lock()
		if s.version != version {
			s.mu.Unlock()
			continue
		}
		changed := s.commit(oldValue, newValue)
		s.mu.Unlock()

		s.afterWrite(changed)
		return
	}
}

// updateLocked is Update with fn called under the write lock, for
// internal updaters that must run exactly once.
func (s *Signal[T]) updateLocked(fn func(T) T) {
	s.base.mustBeAlive()

	s.mu.Lock()
	oldValue := s.value
	changed := s.commit(oldValue, fn(oldValue))
	s.mu.Unlock()

	s.afterWrite(changed)
}

// commit stores next when it differs from prev. The caller holds mu.
func (s *Signal[T]) commit(prev, next T) bool {
	if !s.opts.alwaysNotify && s.equals(prev, next) {
		return false
	}
	s.value = next
	s.version++
	return true
}

func (s *Signal[T]) afterWrite(changed bool) {
	if !changed {
		return
	}
	if obs := s.base.owner.observer(); obs != nil {
		obs.SignalWritten(s.base.info())
	}
	s.base.changed()
}

// Subscribe calls fn with the new value after every committed change,
// in subscription order. The returned function revokes the subscription.
// Subscriptions made inside a scope are revoked when the scope is torn down.
func (s *Signal[T]) Subscribe(fn func(T)) Unsubscribe {
	s.base.mustBeAlive()
	return subscribeFunc(&s.base, func() { fn(s.Peek()) })
}

// WithEquals replaces the equality used to drop unchanged writes, for
// types where reflect.DeepEqual is slow or wrong. It returns s.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Name returns the signal name, or "" if it has none.
func (s *Signal[T]) Name() string {
	return s.base.name
}

// Owner returns the scope the signal belongs to.
func (s *Signal[T]) Owner() *Owner {
	return s.base.owner
}

// PersistKey returns the persistence key, or "" if the signal is not persisted.
func (s *Signal[T]) PersistKey() string {
	return s.opts.persistKey
}

// IsTransient returns true if the signal is excluded from snapshots.
func (s *Signal[T]) IsTransient() bool {
	return s.opts.transient
}

// GetAny returns the current value without tracking.
func (s *Signal[T]) GetAny() any {
	return s.Peek()
}

// SetAny sets the value from an interface{}.
func (s *Signal[T]) SetAny(value any) error {
	if value == nil {
		var zero T
		if t := reflect.TypeOf(&zero).Elem(); !nillable(t) {
			return typeMismatchError(t, value)
		}
		return s.TrySet(zero)
	}
	v, ok := value.(T)
	if !ok {
		var zero T
		return typeMismatchError(reflect.TypeOf(&zero).Elem(), value)
	}
	return s.TrySet(v)
}

// nillable reports whether nil is a valid value of t.
func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// NewValue returns a pointer to a zero T.
func (s *Signal[T]) NewValue() any {
	return new(T)
}

// source implements Writable.
func (s *Signal[T]) source() *signalBase {
	return &s.base
}

// equals checks if two values are equal using the configured equality function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals compares basic kinds with == and everything else with
// reflect.DeepEqual. Values of different dynamic types are never equal.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	t := reflect.TypeOf(av)
	if t != reflect.TypeOf(bv) {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return av == bv
	}
	return reflect.DeepEqual(av, bv)
}

var (
	_ Writable[int] = (*Signal[int])(nil)
	_ Persistable   = (*Signal[int])(nil)
)
