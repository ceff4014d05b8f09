package demo

import (
	"fmt"

	"github.com/vango-dev/signals/pkg/reactive"
	"github.com/vango-dev/signals/pkg/store"
)

// GlobalState is the application state of the global-state demo. Each
// component focuses on one field through a lens, so writing the count
// never wakes the name's subscribers.
type GlobalState struct {
	Count int    `json:"count" cbor:"count"`
	Name  string `json:"name" cbor:"name"`
}

// appState is resolved per app instance through the store mounted on
// the instance scope.
var appState = store.NewShared(GlobalState{}, reactive.PersistKey("global.state"))

// CountSlice focuses on GlobalState.Count.
func CountSlice(state reactive.Writable[GlobalState]) *reactive.Lens[GlobalState, int] {
	return reactive.NewLens(state,
		func(s GlobalState) int { return s.Count },
		func(s GlobalState, n int) GlobalState { s.Count = n; return s },
		reactive.WithName("global.count"),
	)
}

// NameSlice focuses on GlobalState.Name.
func NameSlice(state reactive.Writable[GlobalState]) *reactive.Lens[GlobalState, string] {
	return reactive.NewLens(state,
		func(s GlobalState) string { return s.Name },
		func(s GlobalState, name string) GlobalState { s.Name = name; return s },
		reactive.WithName("global.name"),
	)
}

// GlobalApp is one instance of the global-state demo.
type GlobalApp struct {
	scope *reactive.Owner

	State    *reactive.Signal[GlobalState]
	Count    *reactive.Lens[GlobalState, int]
	Name     *reactive.Lens[GlobalState, string]
	Greeting *reactive.Memo[string]
}

// NewGlobalApp mounts an app instance under parent with its own store.
func NewGlobalApp(parent *reactive.Owner) (*GlobalApp, error) {
	a := &GlobalApp{scope: reactive.NewOwner(parent)}
	if _, err := store.Mount(a.scope); err != nil {
		a.scope.Dispose()
		return nil, err
	}
	state, err := appState.In(a.scope)
	if err != nil {
		a.scope.Dispose()
		return nil, err
	}
	a.State = state

	a.scope.Run(func() {
		a.Count = CountSlice(state)
		a.Name = NameSlice(state)
		a.Greeting = reactive.NewMemo(func() string {
			name := a.Name.Get()
			if name == "" {
				name = "stranger"
			}
			return fmt.Sprintf("Hello, %s! You clicked %d times.", name, a.Count.Get())
		}, reactive.WithName("global.greeting"))
	})
	return a, nil
}

// Component is a child scope of the app that works on one slice of the
// state, the way a rendered component would.
type Component[T any] struct {
	Scope *reactive.Owner
	Slice *reactive.Lens[GlobalState, T]
}

// MountCounterButton mounts a component that resolves the app state
// from context and focuses on the count.
func (a *GlobalApp) MountCounterButton() (*Component[int], error) {
	return mountComponent(a.scope, CountSlice)
}

// MountNameInput mounts a component that resolves the app state from
// context and focuses on the name.
func (a *GlobalApp) MountNameInput() (*Component[string], error) {
	return mountComponent(a.scope, NameSlice)
}

func mountComponent[T any](parent *reactive.Owner, focus func(reactive.Writable[GlobalState]) *reactive.Lens[GlobalState, T]) (*Component[T], error) {
	c := &Component[T]{Scope: reactive.NewOwner(parent)}
	err := reactive.Catch(func() {
		c.Scope.Run(func() {
			c.Slice = focus(appState.Signal())
		})
	})
	if err != nil {
		c.Scope.Dispose()
		return nil, err
	}
	return c, nil
}

// Scope returns the instance scope.
func (a *GlobalApp) Scope() *reactive.Owner {
	return a.scope
}

// Dispose tears the instance and its components down.
func (a *GlobalApp) Dispose() {
	a.scope.Dispose()
}
