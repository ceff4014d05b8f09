package reactive

import "sync/atomic"

// maxEffectReruns bounds how often an effect may re-trigger itself while
// running before the loop is reported as a cyclic dependency.
const maxEffectReruns = 100

// Effect binds a side effect to reactive state. The body runs once at
// creation and again, synchronously, whenever a value it read during
// its previous run changes. A Cleanup returned by the body runs before
// the next run and on disposal.
//
// A rendering layer binds a view with an effect whose body reads what
// the view displays, so the view is refreshed only when one of those
// values changes.
type Effect struct {
	id    uint64
	name  string
	owner *Owner

	body    func() Cleanup
	cleanup Cleanup
	deps    sourceSet

	// running is set while the body executes; rerun records a change
	// that arrived meanwhile.
	running  atomic.Bool
	rerun    atomic.Bool
	disposed atomic.Bool
}

// NewEffect creates an effect in the current scope and runs it at once.
//
//	reactive.NewEffect(func() reactive.Cleanup {
//		fmt.Println("count is", count.Get())
//		return nil
//	})
func NewEffect(body func() Cleanup, opts ...SignalOption) *Effect {
	options := applyOptions(opts)
	e := &Effect{
		id:    nextID(),
		name:  options.name,
		owner: CurrentOwner(),
		body:  body,
	}
	if e.owner != nil {
		e.owner.OnCleanup(e.Dispose)
	}
	e.run()
	return e
}

// MarkDirty re-runs the effect, or schedules one more run when the
// effect is already running.
func (e *Effect) MarkDirty() {
	if !e.disposed.Load() {
		e.run()
	}
}

// ID returns the effect id.
func (e *Effect) ID() uint64 { return e.id }

// run executes the body until a run completes without a change
// arriving mid-run.
func (e *Effect) run() {
	if !e.running.CompareAndSwap(false, true) {
		e.rerun.Store(true)
		return
	}
	defer e.running.Store(false)

	for n := 0; !e.disposed.Load(); n++ {
		if n == maxEffectReruns {
			name := e.name
			if name == "" {
				name = "effect"
			}
			raise(e.owner, cyclicDependencyError([]string{name, name}))
		}
		e.rerun.Store(false)
		e.once()
		if !e.rerun.Load() {
			return
		}
	}
}

func (e *Effect) once() {
	e.runCleanup()
	e.deps.release(e)

	// Primitives created by the body belong to the effect's scope.
	WithOwner(e.owner, func() {
		WithListener(e, func() { e.cleanup = e.body() })
	})
}

func (e *Effect) runCleanup() {
	if c := e.cleanup; c != nil {
		e.cleanup = nil
		c()
	}
}

func (e *Effect) addSource(src *signalBase) { e.deps.add(src) }

// Dispose runs the last cleanup and unsubscribes the effect from its sources.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}
	e.runCleanup()
	e.deps.release(e)
}

var _ sourceTracker = (*Effect)(nil)
