// Package reactive is a fine-grained reactive value store.
//
// Dependencies are tracked at runtime: reading a signal inside a memo,
// an effect or a render wrapped in WithListener subscribes that listener
// to the signal, and only the listeners that read a value are notified
// when it changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	double := NewMemo(func() int { return count.Get() * 2 })
//	value := double.Get()  // Recomputes only if dependencies changed
//
// Lens[S, T] is a read/write slice of a larger state signal:
//
//	name := NewLens(state,
//	    func(s State) string { return s.Name },
//	    func(s State, v string) State { s.Name = v; return s })
//
// KeyedList[K, V] is an ordered list of keyed entries, each with its own
// signal and scope.
//
// # Scopes and context
//
// An Owner is a scope. Signals, memos, lenses, effects and subscriptions
// created while an owner is current belong to it and are released when
// it is torn down. Owners also carry a context registry: a value provided
// on a scope is visible to its whole subtree unless a descendant provides
// the same key again.
//
//	theme := CreateContext[string]("theme")
//	root := NewOwner(nil)
//	theme.Provide(root, "dark")
//	root.Run(func() {
//	    child := MountScope()
//	    v, _ := theme.Require(child) // "dark"
//	})
//
// # Errors
//
// Operations with an error result return contract violations as errors
// matching ErrMissingProvider, ErrDuplicateKey, ErrCyclicDependency,
// ErrUseAfterTeardown, ErrTypeMismatch or ErrUnknownKey under errors.Is.
// Get, Set and the other value-returning operations panic instead;
// Catch turns such a panic back into an error.
//
// # Thread Safety
//
// Values are guarded by mutexes and may be written from any goroutine.
// Notification is synchronous on the writing goroutine. The tracking
// context is per goroutine, so goroutines that create primitives must
// set their scope with WithOwner.
package reactive
