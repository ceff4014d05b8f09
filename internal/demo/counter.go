package demo

import "github.com/vango-dev/signals/pkg/reactive"

// ProgressMax is the maximum of the counter's progress bar.
const ProgressMax = 100

// OddClass is the class applied to the heading while the count is odd.
const OddClass = "red"

// Counter is a count with two derived values: Double drives a progress
// bar and IsOdd toggles a class on the heading.
type Counter struct {
	scope *reactive.Owner

	Count  *reactive.Signal[int]
	Double *reactive.Memo[int]
	IsOdd  *reactive.Memo[bool]
}

// NewCounter mounts a counter scope under parent. The count is
// persisted under "counter.count".
func NewCounter(parent *reactive.Owner) *Counter {
	c := &Counter{scope: reactive.NewOwner(parent)}
	c.scope.Run(func() {
		c.Count = reactive.NewSignal(0, reactive.PersistKey("counter.count"))
		c.Double = reactive.NewMemo(func() int {
			return c.Count.Get() * 2
		}, reactive.WithName("counter.double"))
		c.IsOdd = reactive.NewMemo(func() bool {
			return c.Count.Get()%2 != 0
		}, reactive.WithName("counter.odd"))
	})
	return c
}

// Increment adds one to the count.
func (c *Counter) Increment() {
	c.Count.Update(func(n int) int { return n + 1 })
}

// Decrement subtracts one from the count.
func (c *Counter) Decrement() {
	c.Count.Update(func(n int) int { return n - 1 })
}

// Reset sets the count back to zero.
func (c *Counter) Reset() {
	c.Count.Set(0)
}

// Class returns OddClass while the count is odd, "" otherwise.
func (c *Counter) Class() string {
	if c.IsOdd.Get() {
		return OddClass
	}
	return ""
}

// Progress returns Double as a fraction of ProgressMax, clamped to [0, 1].
func (c *Counter) Progress() float64 {
	p := float64(c.Double.Get()) / ProgressMax
	return min(max(p, 0), 1)
}

// Scope returns the counter's scope.
func (c *Counter) Scope() *reactive.Owner {
	return c.scope
}

// Dispose tears the counter down.
func (c *Counter) Dispose() {
	c.scope.Dispose()
}
