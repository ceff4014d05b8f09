// Package store provides state shared by every view of an app instance
// and state shared by all instances.
//
// An app instance is a scope with a Store provided on it. Shared values
// are declared once at package level and resolve, lazily, to one signal
// per instance:
//
//	// Define a shared value (one signal per app instance)
//	var Cart = store.NewShared([]Item{})
//
//	// Define a global signal (process wide)
//	var ServerStatus = store.NewGlobal("online")
//
//	root := reactive.NewOwner(nil)
//	store.Mount(root)
//	root.Run(func() {
//	    items := Cart.Get()
//	    status := ServerStatus.Get()
//	    ...
//	})
//
// Reading a Shared value from a scope without a mounted Store fails with
// reactive.ErrMissingProvider.
package store
