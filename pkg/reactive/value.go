package reactive

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	// Constant values never change.
	Constant ValueKind = iota
	// Cell values are backed by a writable Signal.
	Cell
	// Derived values are backed by a Memo.
	Derived
	// Slice values are backed by a Lens.
	Slice
)

func (k ValueKind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Cell:
		return "cell"
	case Derived:
		return "derived"
	case Slice:
		return "slice"
	default:
		return "unknown"
	}
}

// readable is the read surface shared by Signal, Memo and Lens.
type readable[T any] interface {
	Get() T
	Peek() T
	Subscribe(fn func(T)) Unsubscribe
}

// Value is any reactive value: a constant, a signal, a memo or a lens.
// Views accept a Value so callers can pass either static or reactive data.
//
// Example:
//
//	func Label(text reactive.Value[string]) { ... }
//
//	Label(reactive.Const("static"))
//	Label(reactive.FromSignal(name))
type Value[T any] struct {
	kind     ValueKind
	constant T
	src      readable[T]
	writable Writable[T]
}

// Const wraps a plain value.
func Const[T any](v T) Value[T] {
	return Value[T]{kind: Constant, constant: v}
}

// FromSignal wraps a signal.
func FromSignal[T any](s *Signal[T]) Value[T] {
	return Value[T]{kind: Cell, src: s, writable: s}
}

// FromMemo wraps a memo.
func FromMemo[T any](m *Memo[T]) Value[T] {
	return Value[T]{kind: Derived, src: m}
}

// FromLens wraps a lens.
func FromLens[S, T any](l *Lens[S, T]) Value[T] {
	return Value[T]{kind: Slice, src: l, writable: l}
}

// Derive creates a memo from fn in the current scope and wraps it.
func Derive[T any](fn func() T, opts ...SignalOption) Value[T] {
	return FromMemo(NewMemo(fn, opts...))
}

// Kind returns the variant.
func (v Value[T]) Kind() ValueKind {
	return v.kind
}

// Get reads the value, tracking it unless it is constant.
func (v Value[T]) Get() T {
	if v.src == nil {
		return v.constant
	}
	return v.src.Get()
}

// Peek reads the value without tracking.
func (v Value[T]) Peek() T {
	if v.src == nil {
		return v.constant
	}
	return v.src.Peek()
}

// Subscribe calls fn after every change. Constants never change, so the
// returned function does nothing for them.
func (v Value[T]) Subscribe(fn func(T)) Unsubscribe {
	if v.src == nil {
		return func() {}
	}
	return v.src.Subscribe(fn)
}

// Writable returns the writable backing a Cell or Slice value.
func (v Value[T]) Writable() (Writable[T], bool) {
	return v.writable, v.writable != nil
}
