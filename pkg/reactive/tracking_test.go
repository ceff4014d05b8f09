package reactive

import (
	"sync"
	"testing"
)

// testListener counts MarkDirty calls.
type testListener struct {
	id         uint64
	dirtyCount int
	mu         sync.Mutex
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirtyCount++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirtyCount
}

func TestTrackerPerGoroutine(t *testing.T) {
	tr1 := current()
	tr2 := current()
	if tr1 != tr2 {
		t.Error("same goroutine should get the same tracker")
	}

	var other *tracker
	var otherID uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer Detach()
		other = current()
		otherID = goid()
	}()
	<-done

	if other == tr1 {
		t.Error("different goroutines should get different trackers")
	}
	if otherID == 0 || otherID == goid() {
		t.Errorf("goid() = %d in another goroutine, want a distinct non-zero id", otherID)
	}
	if _, ok := trackers.Load(otherID); ok {
		t.Error("Detach should drop the goroutine's tracker")
	}
}

func TestWithListenerRestores(t *testing.T) {
	outer := newTestListener()
	inner := newTestListener()

	WithListener(outer, func() {
		WithListener(inner, func() {
			if current().listener != inner {
				t.Error("inner listener should be current")
			}
		})
		if current().listener != outer {
			t.Error("outer listener should be restored")
		}
	})

	if current().listener != nil {
		t.Error("listener should be nil after WithListener returns")
	}
}

func TestWithOwnerRestores(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)

	WithOwner(root, func() {
		WithOwner(child, func() {
			if CurrentOwner() != child {
				t.Error("child should be current owner")
			}
		})
		if CurrentOwner() != root {
			t.Error("root should be restored")
		}
	})

	if CurrentOwner() != nil {
		t.Error("owner should be nil after WithOwner returns")
	}
}

func TestUntracked(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			_ = count.Get()
		})
	})

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Untracked read should not subscribe, got %d notifications", listener.getDirtyCount())
	}
}

func TestComputingStack(t *testing.T) {
	tr := current()
	if _, ok := tr.push(1, "a"); !ok {
		t.Fatal("first push should succeed")
	}
	if _, ok := tr.push(2, "b"); !ok {
		t.Fatal("second push should succeed")
	}

	cycle, ok := tr.push(1, "a")
	if ok {
		t.Fatal("pushing a memo already on the stack should fail")
	}
	want := []string{"a", "b", "a"}
	if len(cycle) != len(want) {
		t.Fatalf("cycle = %v, want %v", cycle, want)
	}
	for i := range want {
		if cycle[i] != want[i] {
			t.Errorf("cycle[%d] = %q, want %q", i, cycle[i], want[i])
		}
	}

	tr.pop()
	tr.pop()
	if n := len(tr.computing); n != 0 {
		t.Errorf("computing stack has %d frames, want 0", n)
	}
}

func TestSequence(t *testing.T) {
	var seq Sequence
	if seq.Last() != 0 {
		t.Errorf("Last() = %d, want 0", seq.Last())
	}
	if got := seq.Next(); got != 1 {
		t.Errorf("Next() = %d, want 1", got)
	}
	if got := seq.Next(); got != 2 {
		t.Errorf("Next() = %d, want 2", got)
	}
	if seq.Last() != 2 {
		t.Errorf("Last() = %d, want 2", seq.Last())
	}
}

func trackerCount() int {
	n := 0
	trackers.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func TestReadsAndWritesLeaveNoTracker(t *testing.T) {
	count := NewSignal(0)
	double := NewMemo(func() int { return count.Get() * 2 })
	NewEffect(func() Cleanup {
		_ = double.Get()
		return nil
	})

	before := trackerCount()

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = count.SetAny(n)
			_ = count.Get()
			_ = double.Get()
			Batch(func() { count.Set(n + 1) })
			_ = CurrentOwner()
		}(i)
	}
	wg.Wait()

	if after := trackerCount(); after > before {
		t.Errorf("trackers grew from %d to %d", before, after)
	}
}

func TestScopedCallKeepsEnclosingTracker(t *testing.T) {
	scope := NewOwner(nil)
	defer scope.Dispose()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer Detach()
		WithOwner(scope, func() {
			Untracked(func() {})
			if CurrentOwner() != scope {
				t.Error("nested scoped call dropped the enclosing owner")
			}
		})
		if lookup() != nil {
			t.Error("tracker left behind after WithOwner returned")
		}
	}()
	<-done
}
