package demo

import (
	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

// Row is one counter of a CounterList as seen by a renderer.
type Row struct {
	ID    uint64
	Value int
}

// CounterList is a dynamic list of counters. Each counter keeps its
// identity for its whole life: removing one never renumbers the others,
// and ids are never reused.
type CounterList struct {
	scope *reactive.Owner
	list  *reactive.CounterList[int]

	// Total sums every counter and tracks both the list and each value.
	Total *reactive.Memo[int]
}

// NewCounterList mounts a list scope under parent holding n counters
// that start at zero.
func NewCounterList(parent *reactive.Owner, n int) *CounterList {
	cl := &CounterList{scope: reactive.NewOwner(parent)}
	cl.scope.Run(func() {
		cl.list = reactive.NewCounterList[int](reactive.WithName("counters"))
		cl.Total = reactive.NewMemo(func() int {
			sum := 0
			for _, e := range cl.list.Entries() {
				sum += e.Value().Get()
			}
			return sum
		}, reactive.WithName("counters.total"))
	})
	for i := 0; i < n; i++ {
		cl.Add()
	}
	return cl
}

// Add appends a counter and returns its id.
func (cl *CounterList) Add() (uint64, error) {
	e, err := cl.list.Push(0)
	if err != nil {
		return 0, err
	}
	return e.Key(), nil
}

// Remove removes the counter with id. It reports whether it existed.
func (cl *CounterList) Remove(id uint64) bool {
	return cl.list.RemoveByKey(id)
}

// Increment adds one to the counter with id.
func (cl *CounterList) Increment(id uint64) error {
	return cl.adjust(id, 1)
}

// Decrement subtracts one from the counter with id.
func (cl *CounterList) Decrement(id uint64) error {
	return cl.adjust(id, -1)
}

func (cl *CounterList) adjust(id uint64, delta int) error {
	e, ok := cl.list.Entry(id)
	if !ok {
		return unknownCounter(id)
	}
	e.Value().Update(func(n int) int { return n + delta })
	return nil
}

// Move moves the counter with id to index.
func (cl *CounterList) Move(id uint64, index int) error {
	return cl.list.Move(id, index)
}

func unknownCounter(id uint64) error {
	return errors.New("R006").
		WithSubjectf("counter %d", id).
		WithSuggestion("List the counters to see the current ids")
}

// Value returns the counter with id.
func (cl *CounterList) Value(id uint64) (*reactive.Signal[int], bool) {
	e, ok := cl.list.Entry(id)
	if !ok {
		return nil, false
	}
	return e.Value(), true
}

// Clear removes every counter.
func (cl *CounterList) Clear() {
	cl.list.Clear()
}

// Rows returns the counters in order.
func (cl *CounterList) Rows() []Row {
	entries := cl.list.Entries()
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{ID: e.Key(), Value: e.Value().Get()}
	}
	return rows
}

// Len returns the number of counters.
func (cl *CounterList) Len() int {
	return cl.list.Len()
}

// Subscribe calls fn whenever counters are added, removed or reordered.
func (cl *CounterList) Subscribe(fn func()) reactive.Unsubscribe {
	return cl.list.Subscribe(func([]*reactive.Entry[uint64, int]) { fn() })
}

// Dispose tears the list and every counter scope down.
func (cl *CounterList) Dispose() {
	cl.scope.Dispose()
}
