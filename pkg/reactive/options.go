package reactive

// SignalOption is a functional option for configuring signals, memos and
// lenses.
type SignalOption func(*signalOptions)

// signalOptions holds configuration for signal behavior.
type signalOptions struct {
	// name is a human-readable label used by observers and errors.
	name string

	// alwaysNotify disables the equal-value check on writes.
	alwaysNotify bool

	// transient signals are skipped by snapshots.
	transient bool

	// persistKey is the key under which the signal is persisted.
	// Signals without a key are never persisted.
	persistKey string
}

// WithName labels the primitive for observers, the inspector and errors.
func WithName(name string) SignalOption {
	return func(o *signalOptions) {
		o.name = name
	}
}

// AlwaysNotify makes every write notify subscribers, even when the new
// value equals the current one.
func AlwaysNotify() SignalOption {
	return func(o *signalOptions) {
		o.alwaysNotify = true
	}
}

// Transient marks a signal as non-persistent. A transient signal keeps
// its persist key for inspection but is left out of snapshots.
//
// Example:
//
//	hover := reactive.NewSignal(false, reactive.PersistKey("hover"), reactive.Transient())
func Transient() SignalOption {
	return func(o *signalOptions) {
		o.transient = true
	}
}

// PersistKey registers the signal under key in the catalog of the scope
// it is created in, making it visible to snapshots and the inspector.
// The key doubles as the signal name unless WithName is also given.
//
// Example:
//
//	userID := reactive.NewSignal(0, reactive.PersistKey("user_id"))
func PersistKey(key string) SignalOption {
	return func(o *signalOptions) {
		o.persistKey = key
	}
}

// applyOptions applies the given options and returns the resulting config.
func applyOptions(opts []SignalOption) signalOptions {
	var options signalOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.name == "" {
		options.name = options.persistKey
	}
	return options
}

// Persistable is implemented by signals created with PersistKey.
type Persistable interface {
	// PersistKey returns the persistence key.
	PersistKey() string

	// IsTransient returns true if the signal should not be persisted.
	IsTransient() bool

	// GetAny returns the current value without tracking.
	GetAny() any

	// SetAny sets the value from an interface{}.
	// Returns an error wrapping ErrTypeMismatch if the type doesn't match.
	SetAny(value any) error

	// NewValue returns a pointer to a zero value of the signal type,
	// suitable as a decoding target.
	NewValue() any
}
