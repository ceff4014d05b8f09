package store

import (
	"sync"
	"sync/atomic"

	"github.com/vango-dev/signals/pkg/reactive"
)

// Key is the context key a Store is provided under.
var Key = reactive.CreateContext[*Store]("store")

// Store holds the instance signals of Shared definitions.
type Store struct {
	owner   *reactive.Owner
	signals sync.Map // map[uint64]any
}

// Mount creates a Store for the app instance rooted at owner and provides
// it to the whole subtree. Signals created by the store belong to owner
// and are torn down with it.
func Mount(owner *reactive.Owner) (*Store, error) {
	s := &Store{owner: owner}
	if err := Key.Provide(owner, s); err != nil {
		return nil, err
	}
	return s, nil
}

// From returns the Store visible from owner.
func From(owner *reactive.Owner) (*Store, error) {
	return Key.Require(owner)
}

// Owner returns the scope the store was mounted on.
func (s *Store) Owner() *reactive.Owner {
	return s.owner
}

// Len returns the number of shared signals materialized so far.
func (s *Store) Len() int {
	n := 0
	s.signals.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Shared is the definition of a value every app instance holds its own
// copy of. The copy is created on first access from inside the instance.
type Shared[T any] struct {
	id      uint64
	initial T
	opts    []reactive.SignalOption
}

// NewShared creates a shared value definition. Options apply to every
// instance signal; with reactive.PersistKey the signals are snapshotted
// along with the rest of the instance.
func NewShared[T any](initial T, opts ...reactive.SignalOption) *Shared[T] {
	return &Shared[T]{
		id:      nextID(),
		initial: initial,
		opts:    opts,
	}
}

// In returns the signal of the app instance visible from owner, creating
// it on first use. It fails with reactive.ErrMissingProvider when no
// Store is mounted above owner.
func (d *Shared[T]) In(owner *reactive.Owner) (*reactive.Signal[T], error) {
	st, err := From(owner)
	if err != nil {
		return nil, err
	}
	return signalIn[T](st, d), nil
}

func signalIn[T any](st *Store, d *Shared[T]) *reactive.Signal[T] {
	if val, ok := st.signals.Load(d.id); ok {
		return val.(*reactive.Signal[T])
	}

	var sig *reactive.Signal[T]
	reactive.WithOwner(st.owner, func() {
		sig = reactive.NewSignal(d.initial, d.opts...)
	})
	actual, _ := st.signals.LoadOrStore(d.id, sig)
	return actual.(*reactive.Signal[T])
}

// Signal returns the signal of the current app instance. It panics with
// reactive.ErrMissingProvider outside an instance.
func (d *Shared[T]) Signal() *reactive.Signal[T] {
	return signalIn[T](Key.Use(), d)
}

// Get reads the current instance's value and subscribes the current listener.
func (d *Shared[T]) Get() T {
	return d.Signal().Get()
}

// Peek reads the current instance's value without subscribing.
func (d *Shared[T]) Peek() T {
	return d.Signal().Peek()
}

// Set writes the current instance's value.
func (d *Shared[T]) Set(value T) {
	d.Signal().Set(value)
}

// Update atomically updates the current instance's value.
func (d *Shared[T]) Update(fn func(T) T) {
	d.Signal().Update(fn)
}

// Subscribe subscribes to the current instance's value.
func (d *Shared[T]) Subscribe(fn func(T)) reactive.Unsubscribe {
	return d.Signal().Subscribe(fn)
}

// Global wraps a signal shared by every app instance in the process.
// It embeds *reactive.Signal[T], so all signal methods are available.
type Global[T any] struct {
	*reactive.Signal[T]
}

// NewGlobal creates a process-wide signal. It belongs to no scope, so it
// is never torn down, wherever it is created.
func NewGlobal[T any](initial T, opts ...reactive.SignalOption) *Global[T] {
	g := &Global[T]{}
	reactive.WithOwner(nil, func() {
		g.Signal = reactive.NewSignal(initial, opts...)
	})
	return g
}
