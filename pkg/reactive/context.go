package reactive

// Provide associates value with key on this scope. Descendant scopes
// see it unless they provide the same key themselves; the nearest
// provider wins. The registry only references value: whoever else holds
// it keeps it alive after the scope is torn down.
func (o *Owner) Provide(key, value any) error {
	if o.disposed.Load() {
		return teardownError("scope", describeKey(key), o.id)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
	return nil
}

// Lookup returns the value for key from this Owner or its nearest
// ancestor that provides it.
func (o *Owner) Lookup(key any) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if cur.disposed.Load() {
			return nil, false
		}
		cur.mu.Lock()
		val, ok := cur.values[key]
		cur.mu.Unlock()
		if ok {
			return val, true
		}
	}
	return nil, false
}

// Require is like Lookup but fails with ErrMissingProvider when no
// scope up to the root provides key, and with ErrUseAfterTeardown when
// o is torn down.
func (o *Owner) Require(key any) (any, error) {
	if o == nil {
		return nil, missingProviderError(key)
	}
	if o.disposed.Load() {
		return nil, teardownError("scope", describeKey(key), o.id)
	}
	val, ok := o.Lookup(key)
	if !ok {
		return nil, missingProviderError(key)
	}
	return val, nil
}

// SetContext provides a context value on the current scope.
// It fails with ErrMissingProvider when called outside any scope.
func SetContext(key, value any) error {
	owner := CurrentOwner()
	if owner == nil {
		return missingProviderError(key)
	}
	return owner.Provide(key, value)
}

// GetContext retrieves a context value from the nearest provider in the
// hierarchy of the current scope. Returns nil if no value is found.
func GetContext(key any) any {
	owner := CurrentOwner()
	if owner == nil {
		return nil
	}
	val, _ := owner.Lookup(key)
	return val
}

// Context is a typed context key. Create one per shared value with
// CreateContext, provide it on an ancestor scope and require it from
// descendants.
//
// Example:
//
//	var StateContext = reactive.CreateContext[*reactive.Signal[GlobalState]]("global-state")
//
//	root := reactive.NewOwner(nil)
//	StateContext.Provide(root, reactive.NewSignal(GlobalState{}))
//
//	child := reactive.NewOwner(root)
//	state, err := StateContext.Require(child)
type Context[T any] struct {
	name string
}

// CreateContext creates a new typed context key. The name is only used
// in error messages; two contexts with the same name are still distinct.
func CreateContext[T any](name string) *Context[T] {
	return &Context[T]{name: name}
}

// String returns the context name.
func (c *Context[T]) String() string {
	return c.name
}

// Provide associates value with this context on scope o.
func (c *Context[T]) Provide(o *Owner, value T) error {
	if o == nil {
		return missingProviderError(c)
	}
	return o.Provide(c, value)
}

// Require returns the value provided by the nearest ancestor of o
// (including o), or ErrMissingProvider.
func (c *Context[T]) Require(o *Owner) (T, error) {
	var zero T
	val, err := o.Require(c)
	if err != nil {
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		return zero, missingProviderError(c)
	}
	return typed, nil
}

// TryGet returns the value provided by the nearest ancestor of o, and
// false when there is none.
func (c *Context[T]) TryGet(o *Owner) (T, bool) {
	var zero T
	if o == nil {
		return zero, false
	}
	val, ok := o.Lookup(c)
	if !ok {
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

// Use resolves the context from the current scope. It panics with
// ErrMissingProvider when no provider is found; wrap callers in Catch to
// turn that into an error.
func (c *Context[T]) Use() T {
	owner := CurrentOwner()
	val, err := c.Require(owner)
	if err != nil {
		raise(owner, err)
	}
	return val
}

// UseOr resolves the context from the current scope, returning def when
// no provider is found.
func (c *Context[T]) UseOr(def T) T {
	if val, ok := c.TryGet(CurrentOwner()); ok {
		return val
	}
	return def
}
