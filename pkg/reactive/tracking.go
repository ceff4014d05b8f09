package reactive

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// tracker is the reactive state of one goroutine: the scope new
// primitives join, the listener reads subscribe, the batch in progress
// and the memos being computed. Each goroutine drives its own tracker,
// so independent apps on different goroutines never see each other's
// listeners or scopes.
type tracker struct {
	owner    *Owner
	listener Listener

	depth   int
	pending []Listener

	computing []computeFrame
}

// computeFrame identifies a memo on the computing stack.
type computeFrame struct {
	id   uint64
	name string
}

// trackers maps goroutine ids to their tracker.
var trackers sync.Map

var goroutinePrefix = []byte("goroutine ")

// goid parses the id out of the "goroutine N [status]:" stack header.
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// current returns the calling goroutine's tracker, creating it on first use.
func current() *tracker {
	return trackerFor(goid())
}

func trackerFor(id uint64) *tracker {
	if t, ok := trackers.Load(id); ok {
		return t.(*tracker)
	}
	t, _ := trackers.LoadOrStore(id, &tracker{})
	return t.(*tracker)
}

// lookup returns the calling goroutine's tracker, or nil when it has
// none. Read paths use it so plain reads and writes leave no state behind.
func lookup() *tracker {
	if t, ok := trackers.Load(goid()); ok {
		return t.(*tracker)
	}
	return nil
}

// enter returns the calling goroutine's tracker and a release function
// that drops it again once it holds no state.
func enter() (*tracker, func()) {
	id := goid()
	t := trackerFor(id)
	return t, func() {
		if t.idle() {
			trackers.CompareAndDelete(id, t)
		}
	}
}

// idle reports whether t carries no scope, listener, batch or computation.
func (t *tracker) idle() bool {
	return t.owner == nil && t.listener == nil && t.depth == 0 &&
		len(t.pending) == 0 && len(t.computing) == 0
}

func (t *tracker) swapListener(l Listener) Listener {
	prev := t.listener
	t.listener = l
	return prev
}

func (t *tracker) swapOwner(o *Owner) *Owner {
	prev := t.owner
	t.owner = o
	return prev
}

// batching reports whether notifications are being deferred.
func (t *tracker) batching() bool {
	return t.depth > 0
}

// enqueue defers a notification to the end of the outermost batch.
func (t *tracker) enqueue(l Listener) {
	t.pending = append(t.pending, l)
}

// drain hands over the deferred notifications.
func (t *tracker) drain() []Listener {
	out := t.pending
	t.pending = nil
	return out
}

// push records that memo id is computing. When the memo is already on
// the stack it returns the names from its first frame to the top,
// closed by name, and false.
func (t *tracker) push(id uint64, name string) ([]string, bool) {
	for i, f := range t.computing {
		if f.id != id {
			continue
		}
		path := make([]string, 0, len(t.computing)-i+1)
		for _, g := range t.computing[i:] {
			path = append(path, g.name)
		}
		return append(path, name), false
	}
	t.computing = append(t.computing, computeFrame{id: id, name: name})
	return nil, true
}

func (t *tracker) pop() {
	if n := len(t.computing); n > 0 {
		t.computing = t.computing[:n-1]
	}
}

// WithOwner runs fn with owner as the current scope. Primitives created
// inside fn belong to owner and are disposed with it. Goroutines started
// by a component use it to attach their work to the component's scope:
//
//	go func() {
//		defer reactive.Detach()
//		reactive.WithOwner(scope, func() {
//			status := reactive.NewSignal("loading")
//			_ = status
//		})
//	}()
func WithOwner(owner *Owner, fn func()) {
	t, release := enter()
	defer release()
	prev := t.swapOwner(owner)
	defer t.swapOwner(prev)
	fn()
}

// WithListener runs fn with l collecting the reads made inside it.
// Rendering layers use it to record the dependencies of a view.
func WithListener(l Listener, fn func()) {
	t, release := enter()
	defer release()
	prev := t.swapListener(l)
	defer t.swapListener(prev)
	fn()
}

// CurrentOwner returns the scope primitives are currently created in,
// or nil outside any scope.
func CurrentOwner() *Owner {
	if t := lookup(); t != nil {
		return t.owner
	}
	return nil
}

// Detach drops the calling goroutine's reactive state. Scoped calls
// release their state when they return; Detach clears whatever is left
// and servers call it at the end of each request.
func Detach() {
	trackers.Delete(goid())
}
