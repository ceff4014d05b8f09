package reactive

import "testing"

func TestCounterScenario(t *testing.T) {
	scope := NewOwner(nil)
	defer scope.Dispose()

	var count *Signal[int]
	var double *Memo[int]
	scope.Run(func() {
		count = NewSignal(0)
		double = NewMemo(func() int { return count.Get() * 2 })
	})

	var rendered []int
	count.Subscribe(func(n int) { rendered = append(rendered, n) })

	for i := 0; i < 3; i++ {
		count.Update(func(n int) int { return n + 1 })
	}

	if count.Get() != 3 {
		t.Errorf("count = %d, want 3", count.Get())
	}
	if double.Get() != 6 {
		t.Errorf("double = %d, want 6", double.Get())
	}
	if len(rendered) != 3 {
		t.Errorf("subscriber called %d times, want 3", len(rendered))
	}
}

func TestGlobalStateScenario(t *testing.T) {
	type globalState struct {
		Count int
		Name  string
	}
	stateCtx := CreateContext[*Signal[globalState]]("state")

	root := NewOwner(nil)
	defer root.Dispose()
	_ = stateCtx.Provide(root, NewSignal(globalState{}))

	counter := NewOwner(root)
	var count *Lens[globalState, int]
	var nameWrites int
	counter.Run(func() {
		state := stateCtx.Use()
		count = NewLens(Writable[globalState](state),
			func(s globalState) int { return s.Count },
			func(s globalState, n int) globalState { s.Count = n; return s },
		)
		name := NewLens(Writable[globalState](state),
			func(s globalState) string { return s.Name },
			func(s globalState, n string) globalState { s.Name = n; return s },
		)
		name.Subscribe(func(string) { nameWrites++ })
	})

	count.Set(5)

	state, err := stateCtx.Require(NewOwner(root))
	if err != nil {
		t.Fatalf("Require error = %v", err)
	}
	got := state.Peek()
	if got.Count != 5 || got.Name != "" {
		t.Errorf("state = %+v, want {Count:5 Name:}", got)
	}
	if nameWrites != 0 {
		t.Errorf("name subscriber notified %d times by count write", nameWrites)
	}
}
