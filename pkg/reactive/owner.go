package reactive

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Owner is a scope: the lifetime of the primitives, subscriptions,
// context values and child scopes created under it. Disposing a scope
// releases all of them, and the signals it owned start failing with
// ErrUseAfterTeardown.
//
// Scopes mirror the UI tree. A rendering layer mounts one per subtree
// and tears it down when the subtree is removed.
type Owner struct {
	id     uint64
	parent *Owner

	// mu guards everything below except disposed.
	mu       sync.Mutex
	children []*Owner
	cleanups []func()
	values   map[any]any
	catalog  map[string]Persistable
	obs      Observer

	disposed atomic.Bool
}

// NewOwner creates a scope under parent, or a root scope when parent is nil.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID(), parent: parent}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, o)
		parent.mu.Unlock()
	}
	return o
}

// MountScope creates a child scope of the current scope (a root scope
// when there is none).
func MountScope() *Owner {
	return NewOwner(CurrentOwner())
}

// TeardownScope disposes o. It is the rendering layer's unmount hook.
func TeardownScope(o *Owner) {
	if o != nil {
		o.Dispose()
	}
}

// ID returns the scope id.
func (o *Owner) ID() uint64 { return o.id }

// Parent returns the enclosing scope, nil for a root.
func (o *Owner) Parent() *Owner { return o.parent }

// IsDisposed reports whether the scope was torn down.
func (o *Owner) IsDisposed() bool { return o.disposed.Load() }

// Run runs fn with o as the current owner.
func (o *Owner) Run(fn func()) {
	WithOwner(o, fn)
}

// Children returns a copy of the live child scopes in creation order.
func (o *Owner) Children() []*Owner {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Owner(nil), o.children...)
}

func (o *Owner) detach(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run when the scope is disposed. Cleanups run
// in reverse registration order. On a disposed scope fn runs at once.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	if o.disposed.Load() {
		o.mu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// SetObserver attaches obs to this scope. Primitives of this scope and
// of every descendant without its own observer report to it.
func (o *Owner) SetObserver(obs Observer) {
	o.mu.Lock()
	o.obs = obs
	o.mu.Unlock()
}

// observer returns the nearest observer up the hierarchy.
// It is safe to call on a nil Owner.
func (o *Owner) observer() Observer {
	for cur := o; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		obs := cur.obs
		cur.mu.Unlock()
		if obs != nil {
			return obs
		}
	}
	return nil
}

// register adds a persistable signal to this scope's catalog.
func (o *Owner) register(key string, p Persistable) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.catalog == nil {
		o.catalog = make(map[string]Persistable)
	}
	o.catalog[key] = p
}

// walk calls visit for o and every live descendant, parents first.
// visit runs with the scope locked and must not call back into it.
func (o *Owner) walk(visit func(*Owner)) {
	if o.disposed.Load() {
		return
	}
	o.mu.Lock()
	visit(o)
	children := append([]*Owner(nil), o.children...)
	o.mu.Unlock()

	for _, c := range children {
		c.walk(visit)
	}
}

// Persistables returns the persistable signals of this scope and its
// live descendants, keyed by persist key. When two scopes use the same
// key, the one closer to o wins.
func (o *Owner) Persistables() map[string]Persistable {
	out := make(map[string]Persistable)
	o.walk(func(s *Owner) {
		for k, p := range s.catalog {
			if _, taken := out[k]; !taken {
				out[k] = p
			}
		}
	})
	return out
}

// PersistKeys returns the sorted persist keys visible from o.
func (o *Owner) PersistKeys() []string {
	all := o.Persistables()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats summarizes the size of a scope tree.
type Stats struct {
	Scopes       int `json:"scopes"`
	Values       int `json:"values"`
	Cleanups     int `json:"cleanups"`
	Persistables int `json:"persistables"`
}

// Stats counts the live scopes, context values, pending cleanups and
// persistable signals of o and its descendants.
func (o *Owner) Stats() Stats {
	var st Stats
	o.walk(func(s *Owner) {
		st.Scopes++
		st.Values += len(s.values)
		st.Cleanups += len(s.cleanups)
		st.Persistables += len(s.catalog)
	})
	return st
}

// Dispose tears the scope down: children first, newest first, then the
// scope's own cleanups in reverse order. Context values and the catalog
// are dropped and the observer is told. A second call does nothing.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}
	if o.parent != nil {
		o.parent.detach(o)
	}

	o.mu.Lock()
	children, cleanups := o.children, o.cleanups
	o.children, o.cleanups = nil, nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	obs := o.observer()

	o.mu.Lock()
	o.values, o.catalog = nil, nil
	o.mu.Unlock()

	if obs != nil {
		obs.ScopeDisposed(o.id)
	}
}
