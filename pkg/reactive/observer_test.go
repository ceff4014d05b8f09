package reactive

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	NopObserver
	mu       sync.Mutex
	writes   []Info
	computes int
	disposed []uint64
	errs     []error
}

func (r *recordingObserver) SignalWritten(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, info)
}

func (r *recordingObserver) MemoComputed(Info, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.computes++
}

func (r *recordingObserver) ScopeDisposed(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = append(r.disposed, id)
}

func (r *recordingObserver) ErrorRaised(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestObserverInheritedByChildren(t *testing.T) {
	obs := &recordingObserver{}
	root := NewOwner(nil)
	root.SetObserver(obs)
	child := NewOwner(root)

	var count *Signal[int]
	var double *Memo[int]
	child.Run(func() {
		count = NewSignal(0, WithName("count"))
		double = NewMemo(func() int { return count.Get() * 2 })
	})

	count.Set(1)
	count.Set(1)
	_ = double.Get()

	if len(obs.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(obs.writes))
	}
	if w := obs.writes[0]; w.Name != "count" || w.Kind != KindSignal || w.ID != count.ID() {
		t.Errorf("write info = %+v", w)
	}
	if obs.computes != 1 {
		t.Errorf("computes = %d, want 1", obs.computes)
	}

	childID := child.ID()
	child.Dispose()
	if len(obs.disposed) != 1 || obs.disposed[0] != childID {
		t.Errorf("disposed = %v, want [%d]", obs.disposed, childID)
	}

	if _, err := count.TryGet(); !errors.Is(err, ErrUseAfterTeardown) {
		t.Fatalf("TryGet error = %v", err)
	}
	if len(obs.errs) != 1 || !errors.Is(obs.errs[0], ErrUseAfterTeardown) {
		t.Errorf("errors = %v, want one ErrUseAfterTeardown", obs.errs)
	}
}

func TestObserverNearestWins(t *testing.T) {
	outer := &recordingObserver{}
	inner := &recordingObserver{}
	root := NewOwner(nil)
	root.SetObserver(outer)
	child := NewOwner(root)
	child.SetObserver(inner)

	var s *Signal[string]
	child.Run(func() { s = NewSignal("") })
	s.Set("x")

	if len(inner.writes) != 1 || len(outer.writes) != 0 {
		t.Errorf("inner=%d outer=%d writes, want 1 0", len(inner.writes), len(outer.writes))
	}
}
