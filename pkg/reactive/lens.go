package reactive

import "sync"

// Writable is a reactive value that can be read, written and subscribed
// to. It is implemented by *Signal[T] and *Lens[S, T], which lets
// lenses focus on other lenses.
type Writable[T any] interface {
	Get() T
	Peek() T
	Set(value T)
	Update(fn func(T) T)
	Subscribe(fn func(T)) Unsubscribe

	source() *signalBase
}

// Lens projects a part of a container value as an independent-looking
// signal: reads apply get to the container value, writes apply set to a
// copy of it and store the result back into the container.
//
// A lens keeps its own subscriber list. When the container changes it
// re-projects the container value and notifies its subscribers only if
// the projected part changed, so two lenses over disjoint fields of the
// same container never wake each other's subscribers. The last
// projection is kept for that comparison only; reads always go to the
// container.
//
// set must not mutate its argument in place: it returns an updated copy.
//
// Example:
//
//	state := reactive.NewSignal(GlobalState{})
//	count := reactive.NewLens(state,
//	    func(s GlobalState) int { return s.Count },
//	    func(s GlobalState, n int) GlobalState { s.Count = n; return s },
//	)
//	count.Set(5) // state.Name is untouched
type Lens[S, T any] struct {
	base signalBase

	container Writable[S]
	get       func(S) T
	set       func(S, T) S

	equal func(T, T) bool

	// last is the projection observed at the previous container change.
	last   T
	lastMu sync.Mutex

	watcher  *relay
	disposed sync.Once
}

// NewLens creates a lens over container. The lens belongs to the current
// scope and stops watching the container when the scope is torn down.
func NewLens[S, T any](container Writable[S], get func(S) T, set func(S, T) S, opts ...SignalOption) *Lens[S, T] {
	options := applyOptions(opts)
	l := &Lens[S, T]{
		base:      newSignalBase(KindLens, options.name),
		container: container,
		get:       get,
		set:       set,
		last:      get(container.Peek()),
	}

	l.base.refresh = l.refresh
	l.watcher = newRelay(func(bool) { l.base.markStale(false) }, l.containerChanged)
	container.source().subscribe(l.watcher)

	if l.base.owner != nil {
		l.base.owner.OnCleanup(l.Dispose)
	}
	return l
}

// containerChanged re-projects the container and notifies on change.
// Values derived from the lens were already marked stale when the
// container changed.
func (l *Lens[S, T]) containerChanged() {
	next := l.get(l.container.Peek())

	l.lastMu.Lock()
	changed := !l.equals(l.last, next)
	if changed {
		l.last = next
	}
	l.lastMu.Unlock()

	if changed {
		l.base.deliver()
	}
}

// refresh reports whether the projection moved since the last container
// change was settled.
func (l *Lens[S, T]) refresh() bool {
	next := l.get(l.container.Peek())
	l.lastMu.Lock()
	defer l.lastMu.Unlock()
	return !l.equals(l.last, next)
}

// Get returns the projected value and subscribes the current listener
// to the lens (not to the whole container).
func (l *Lens[S, T]) Get() T {
	l.mustBeAlive()
	value := l.get(l.container.Peek())
	l.base.track()
	return value
}

// TryGet is like Get but returns ErrUseAfterTeardown instead of panicking.
func (l *Lens[S, T]) TryGet() (value T, err error) {
	err = Catch(func() { value = l.Get() })
	return value, err
}

// Peek returns the projected value without subscribing.
func (l *Lens[S, T]) Peek() T {
	return l.get(l.container.Peek())
}

// Set writes value into the container through the setter.
func (l *Lens[S, T]) Set(value T) {
	l.mustBeAlive()
	l.container.Update(func(s S) S {
		return l.set(s, value)
	})
}

// TrySet is like Set but returns ErrUseAfterTeardown instead of panicking.
func (l *Lens[S, T]) TrySet(value T) error {
	return Catch(func() { l.Set(value) })
}

// Update applies fn to the projected value and writes the result back.
// It inherits the container's Update contract: fn runs unlocked, may
// read the lens or its container, and is called again if a concurrent
// write lands first.
func (l *Lens[S, T]) Update(fn func(T) T) {
	l.mustBeAlive()
	l.container.Update(func(s S) S {
		return l.set(s, fn(l.get(s)))
	})
}

// Subscribe calls fn with the projected value whenever it changes.
func (l *Lens[S, T]) Subscribe(fn func(T)) Unsubscribe {
	l.mustBeAlive()
	return subscribeFunc(&l.base, func() { fn(l.Peek()) })
}

// WithEquals sets the equality used to decide whether the projection
// changed.
func (l *Lens[S, T]) WithEquals(fn func(T, T) bool) *Lens[S, T] {
	l.equal = fn
	return l
}

// ID returns the unique identifier for this lens.
func (l *Lens[S, T]) ID() uint64 {
	return l.base.id
}

// Name returns the lens name, or "" if it has none.
func (l *Lens[S, T]) Name() string {
	return l.base.name
}

// Dispose stops watching the container.
func (l *Lens[S, T]) Dispose() {
	l.disposed.Do(func() {
		l.watcher.active.Store(false)
		l.container.source().unsubscribe(l.watcher)
	})
}

func (l *Lens[S, T]) mustBeAlive() {
	l.base.mustBeAlive()
	l.container.source().mustBeAlive()
}

func (l *Lens[S, T]) source() *signalBase {
	return &l.base
}

func (l *Lens[S, T]) equals(a, b T) bool {
	if l.equal != nil {
		return l.equal(a, b)
	}
	return defaultEquals(a, b)
}

var _ Writable[int] = (*Lens[struct{}, int])(nil)
