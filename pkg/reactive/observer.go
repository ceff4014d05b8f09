package reactive

import "time"

// Info describes a reactive primitive to an Observer.
type Info struct {
	ID   uint64
	Name string
	Kind Kind
}

// Observer receives lifecycle events from the primitives of a scope.
// Attach one with Owner.SetObserver; child scopes inherit it.
// Methods are called synchronously on the goroutine that caused the
// event and must not block.
type Observer interface {
	// SignalWritten is called after a write that changed a value.
	SignalWritten(info Info)

	// SignalNotified is called when a primitive fans out to n subscribers.
	SignalNotified(info Info, subscribers int)

	// MemoComputed is called after a memo ran its computation.
	MemoComputed(info Info, took time.Duration)

	// ScopeDisposed is called when a scope is torn down.
	ScopeDisposed(id uint64)

	// ErrorRaised is called before a contract violation is raised.
	ErrorRaised(err error)
}

// NopObserver implements Observer with no-ops. Embed it to implement
// only the events you care about.
type NopObserver struct{}

func (NopObserver) SignalWritten(Info)               {}
func (NopObserver) SignalNotified(Info, int)         {}
func (NopObserver) MemoComputed(Info, time.Duration) {}
func (NopObserver) ScopeDisposed(uint64)             {}
func (NopObserver) ErrorRaised(error)                {}

var _ Observer = NopObserver{}
