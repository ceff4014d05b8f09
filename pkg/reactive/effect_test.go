package reactive

import (
	"errors"
	"testing"
)

func TestEffectRunsImmediately(t *testing.T) {
	runs := 0
	NewEffect(func() Cleanup {
		runs++
		return nil
	})
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestEffectRerunsOnChange(t *testing.T) {
	count := NewSignal(0)
	var seen []int
	NewEffect(func() Cleanup {
		seen = append(seen, count.Get())
		return nil
	})

	count.Set(1)
	count.Set(2)

	if len(seen) != 3 || seen[0] != 0 || seen[1] != 1 || seen[2] != 2 {
		t.Errorf("seen = %v, want [0 1 2]", seen)
	}
}

func TestEffectCleanup(t *testing.T) {
	count := NewSignal(0)
	cleanups := 0
	scope := NewOwner(nil)
	scope.Run(func() {
		NewEffect(func() Cleanup {
			_ = count.Get()
			return func() { cleanups++ }
		})
	})

	count.Set(1)
	if cleanups != 1 {
		t.Errorf("cleanups after rerun = %d, want 1", cleanups)
	}

	scope.Dispose()
	if cleanups != 2 {
		t.Errorf("cleanups after dispose = %d, want 2", cleanups)
	}

	count.Set(2)
	if cleanups != 2 {
		t.Error("disposed effect should not rerun")
	}
}

func TestEffectSelfWriteSettles(t *testing.T) {
	count := NewSignal(0)
	NewEffect(func() Cleanup {
		if n := count.Get(); n < 5 {
			count.Set(n + 1)
		}
		return nil
	})

	if count.Peek() != 5 {
		t.Errorf("count = %d, want 5", count.Peek())
	}
}

func TestEffectRunawayLoop(t *testing.T) {
	count := NewSignal(0)
	err := Catch(func() {
		NewEffect(func() Cleanup {
			count.Set(count.Get() + 1)
			return nil
		}, WithName("runaway"))
	})

	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("error = %v, want ErrCyclicDependency", err)
	}
}
