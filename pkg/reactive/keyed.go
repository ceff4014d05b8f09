package reactive

import (
	"errors"
	"slices"
	"sync"
)

// Entry is one element of a KeyedList. Its Signal keeps its identity
// while the entry stays in the list, whatever happens to its siblings.
type Entry[K comparable, V any] struct {
	key   K
	value *Signal[V]
	scope *Owner
}

// Key returns the entry key.
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Value returns the entry's signal.
func (e *Entry[K, V]) Value() *Signal[V] {
	return e.value
}

// Scope returns the entry's scope. Views rendered for the entry should be
// mounted under it; it is torn down when the entry is removed.
func (e *Entry[K, V]) Scope() *Owner {
	return e.scope
}

// KeyedList is an ordered collection of uniquely keyed entries, each
// holding its own Signal and scope. The list itself is reactive: reading
// Entries, Keys or Len inside a tracked computation subscribes to
// structural changes (insertions, removals, moves) but not to writes on
// individual entries.
type KeyedList[K comparable, V any] struct {
	owner   *Owner
	entries *Signal[[]*Entry[K, V]]

	// mu guards index. Structural changes also run inside entries.Update,
	// which serializes them.
	mu    sync.Mutex
	index map[K]*Entry[K, V]

	valueOpts []SignalOption
}

// NewKeyedList creates an empty keyed list in the current scope.
// Options configure the list's own structural signal.
func NewKeyedList[K comparable, V any](opts ...SignalOption) *KeyedList[K, V] {
	l := &KeyedList[K, V]{
		owner: CurrentOwner(),
		index: make(map[K]*Entry[K, V]),
	}
	l.entries = NewSignal[[]*Entry[K, V]](nil, opts...).WithEquals(func(a, b []*Entry[K, V]) bool {
		return slices.Equal(a, b)
	})
	l.entries.base.kind = KindList
	return l
}

// WithValueOptions sets the options used for the signals of new entries.
func (l *KeyedList[K, V]) WithValueOptions(opts ...SignalOption) *KeyedList[K, V] {
	l.valueOpts = opts
	return l
}

// Insert appends a new entry. It fails with ErrDuplicateKey if the key is
// already present; the list is left unchanged in that case.
func (l *KeyedList[K, V]) Insert(key K, initial V) (*Entry[K, V], error) {
	return l.InsertAt(-1, key, initial)
}

// InsertAt inserts a new entry at index. A negative or too large index
// appends.
func (l *KeyedList[K, V]) InsertAt(index int, key K, initial V) (*Entry[K, V], error) {
	var entry *Entry[K, V]
	var err error
	if perr := Catch(func() {
		l.entries.updateLocked(func(cur []*Entry[K, V]) []*Entry[K, V] {
			l.mu.Lock()
			defer l.mu.Unlock()

			if _, dup := l.index[key]; dup {
				err = duplicateKeyError(key)
				return cur
			}
			entry = l.newEntry(key, initial)
			l.index[key] = entry

			if index < 0 || index > len(cur) {
				index = len(cur)
			}
			next := make([]*Entry[K, V], 0, len(cur)+1)
			next = append(next, cur[:index]...)
			next = append(next, entry)
			return append(next, cur[index:]...)
		})
	}); perr != nil {
		return nil, perr
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *KeyedList[K, V]) newEntry(key K, initial V) *Entry[K, V] {
	e := &Entry[K, V]{key: key, scope: NewOwner(l.owner)}
	WithOwner(e.scope, func() {
		e.value = NewSignal(initial, l.valueOpts...)
	})
	return e
}

// RemoveByKey removes the entry with key and tears its scope down.
// It reports whether an entry was removed.
func (l *KeyedList[K, V]) RemoveByKey(key K) bool {
	removed := l.remove(func(e *Entry[K, V]) bool { return e.key == key })
	return len(removed) > 0
}

// Retain keeps only the entries for which keep returns true and returns
// the number of removed entries.
func (l *KeyedList[K, V]) Retain(keep func(key K, value *Signal[V]) bool) int {
	return len(l.remove(func(e *Entry[K, V]) bool { return !keep(e.key, e.value) }))
}

// Clear removes all entries.
func (l *KeyedList[K, V]) Clear() {
	l.remove(func(*Entry[K, V]) bool { return true })
}

// remove drops the matching entries and disposes their scopes once
// subscribers have been notified.
func (l *KeyedList[K, V]) remove(match func(*Entry[K, V]) bool) []*Entry[K, V] {
	var removed []*Entry[K, V]
	l.entries.updateLocked(func(cur []*Entry[K, V]) []*Entry[K, V] {
		l.mu.Lock()
		defer l.mu.Unlock()

		next := make([]*Entry[K, V], 0, len(cur))
		for _, e := range cur {
			if match(e) {
				removed = append(removed, e)
				delete(l.index, e.key)
				continue
			}
			next = append(next, e)
		}
		if len(removed) == 0 {
			return cur
		}
		return next
	})
	for _, e := range removed {
		e.scope.Dispose()
	}
	return removed
}

// Move moves the entry with key to index, clamped to the list bounds.
// It fails with ErrUnknownKey if the key is not present.
func (l *KeyedList[K, V]) Move(key K, index int) error {
	var err error
	if perr := Catch(func() {
		l.entries.updateLocked(func(cur []*Entry[K, V]) []*Entry[K, V] {
			from := slices.IndexFunc(cur, func(e *Entry[K, V]) bool { return e.key == key })
			if from < 0 {
				err = unknownKeyError(key)
				return cur
			}
			entry := cur[from]
			next := slices.Delete(slices.Clone(cur), from, from+1)
			if index < 0 {
				index = 0
			}
			if index > len(next) {
				index = len(next)
			}
			return slices.Insert(next, index, entry)
		})
	}); perr != nil {
		return perr
	}
	return err
}

// Entries returns the entries in order and subscribes the current
// listener to structural changes.
func (l *KeyedList[K, V]) Entries() []*Entry[K, V] {
	return slices.Clone(l.entries.Get())
}

// Keys returns the keys in order. Tracked like Entries.
func (l *KeyedList[K, V]) Keys() []K {
	entries := l.entries.Get()
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of entries. Tracked like Entries.
func (l *KeyedList[K, V]) Len() int {
	return len(l.entries.Get())
}

// Entry returns the entry with key without tracking.
func (l *KeyedList[K, V]) Entry(key K) (*Entry[K, V], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.index[key]
	return e, ok
}

// Subscribe calls fn with the new entries after every structural change.
func (l *KeyedList[K, V]) Subscribe(fn func([]*Entry[K, V])) Unsubscribe {
	return l.entries.Subscribe(func(entries []*Entry[K, V]) {
		fn(slices.Clone(entries))
	})
}

// ID returns the unique identifier of the list's structural signal.
func (l *KeyedList[K, V]) ID() uint64 {
	return l.entries.ID()
}

// CounterList is a KeyedList whose keys come from its own Sequence, for
// collections without natural keys.
type CounterList[V any] struct {
	*KeyedList[uint64, V]
	seq Sequence
}

// NewCounterList creates an empty counter-keyed list in the current scope.
func NewCounterList[V any](opts ...SignalOption) *CounterList[V] {
	return &CounterList[V]{KeyedList: NewKeyedList[uint64, V](opts...)}
}

// Push appends initial under the next key of the list's sequence.
// Keys are never reused, not even after Clear.
func (c *CounterList[V]) Push(initial V) (*Entry[uint64, V], error) {
	for {
		e, err := c.Insert(c.seq.Next(), initial)
		if errors.Is(err, ErrDuplicateKey) {
			// The key was inserted by hand; draw the next one.
			continue
		}
		return e, err
	}
}

// LastKey returns the most recently generated key, or 0.
func (c *CounterList[V]) LastKey() uint64 {
	return c.seq.Last()
}
