package reactive

import (
	"errors"
	"testing"
)

type lensState struct {
	Count int
	Name  string
	Inner innerState
}

type innerState struct {
	Flag bool
}

func countLens(s Writable[lensState]) *Lens[lensState, int] {
	return NewLens(s,
		func(s lensState) int { return s.Count },
		func(s lensState, n int) lensState { s.Count = n; return s },
	)
}

func nameLens(s Writable[lensState]) *Lens[lensState, string] {
	return NewLens(s,
		func(s lensState) string { return s.Name },
		func(s lensState, n string) lensState { s.Name = n; return s },
	)
}

func TestLensReadWrite(t *testing.T) {
	state := NewSignal(lensState{Name: "x"})
	count := countLens(state)

	count.Set(5)
	if got := state.Peek(); got.Count != 5 || got.Name != "x" {
		t.Errorf("state = %+v, want Count=5 Name=x", got)
	}
	if count.Get() != 5 {
		t.Errorf("count = %d, want 5", count.Get())
	}

	count.Update(func(n int) int { return n + 1 })
	if count.Get() != 6 {
		t.Errorf("count = %d, want 6", count.Get())
	}
}

func TestLensReadsContainer(t *testing.T) {
	state := NewSignal(lensState{})
	name := nameLens(state)

	state.Set(lensState{Name: "direct"})
	if name.Get() != "direct" {
		t.Errorf("name = %q, want direct", name.Get())
	}
}

func TestLensDisjointFields(t *testing.T) {
	state := NewSignal(lensState{})
	count := countLens(state)
	name := nameLens(state)

	var countCalls, nameCalls int
	count.Subscribe(func(int) { countCalls++ })
	name.Subscribe(func(string) { nameCalls++ })

	count.Set(1)
	count.Set(2)
	if countCalls != 2 {
		t.Errorf("count subscriber called %d times, want 2", countCalls)
	}
	if nameCalls != 0 {
		t.Errorf("name subscriber called %d times after count writes, want 0", nameCalls)
	}

	name.Set("a")
	if countCalls != 2 || nameCalls != 1 {
		t.Errorf("after name write count=%d name=%d, want 2 1", countCalls, nameCalls)
	}
}

func TestLensTrackedByMemo(t *testing.T) {
	state := NewSignal(lensState{})
	count := countLens(state)
	name := nameLens(state)

	runs := 0
	label := NewMemo(func() int {
		runs++
		return count.Get() * 10
	})
	_ = label.Get()

	name.Set("unrelated")
	_ = label.Get()
	if runs != 1 {
		t.Errorf("memo over count recomputed after name write, runs = %d", runs)
	}

	count.Set(3)
	if v := label.Get(); v != 30 {
		t.Errorf("label = %d, want 30", v)
	}
}

func TestLensOverLens(t *testing.T) {
	state := NewSignal(lensState{})
	inner := NewLens(state,
		func(s lensState) innerState { return s.Inner },
		func(s lensState, in innerState) lensState { s.Inner = in; return s },
	)
	flag := NewLens(Writable[innerState](inner),
		func(in innerState) bool { return in.Flag },
		func(in innerState, f bool) innerState { in.Flag = f; return in },
	)

	calls := 0
	flag.Subscribe(func(bool) { calls++ })

	flag.Set(true)
	if !state.Peek().Inner.Flag {
		t.Error("nested lens write should reach the root state")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	countLens(state).Set(9)
	if calls != 1 {
		t.Errorf("unrelated write notified nested lens, calls = %d", calls)
	}
}

func TestLensUseAfterTeardown(t *testing.T) {
	scope := NewOwner(nil)
	var count *Lens[lensState, int]
	var state *Signal[lensState]
	scope.Run(func() {
		state = NewSignal(lensState{})
		count = countLens(state)
	})
	scope.Dispose()

	if _, err := count.TryGet(); !errors.Is(err, ErrUseAfterTeardown) {
		t.Errorf("TryGet error = %v, want ErrUseAfterTeardown", err)
	}
	if err := count.TrySet(1); !errors.Is(err, ErrUseAfterTeardown) {
		t.Errorf("TrySet error = %v, want ErrUseAfterTeardown", err)
	}
	if state.base.subscriberCount() != 0 {
		t.Errorf("disposed lens still watches its container")
	}
}

func TestLensUpdateReadsThroughLenses(t *testing.T) {
	state := NewSignal(lensState{Count: 2})
	count := countLens(state)
	outer := NewLens[lensState, lensState](state,
		func(s lensState) lensState { return s },
		func(_ lensState, v lensState) lensState { return v },
	)
	inner := countLens(outer)

	finishes(t, "Update over a lens reading the lens", func() {
		inner.Update(func(n int) int { return n + inner.Peek() + count.Get() })
	})
	if got := state.Peek().Count; got != 6 {
		t.Errorf("Count = %d, want 6", got)
	}
}

func TestLensDerivedMemoFreshInContainerSubscriber(t *testing.T) {
	state := NewSignal(lensState{})

	// Subscribed ahead of the lens, so it is notified first.
	var double *Memo[int]
	var seen []int
	state.Subscribe(func(s lensState) { seen = append(seen, double.Get()-2*s.Count) })

	count := countLens(state)
	double = NewMemo(func() int { return count.Get() * 2 })
	_ = double.Get()

	count.Set(1)
	count.Set(4)
	for i, d := range seen {
		if d != 0 {
			t.Errorf("notification %d saw a memo off by %d", i, d)
		}
	}
	if len(seen) != 2 {
		t.Errorf("container subscriber called %d times, want 2", len(seen))
	}
}
