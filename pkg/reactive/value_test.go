package reactive

import "testing"

func TestValueKinds(t *testing.T) {
	state := NewSignal(lensState{Count: 2})
	count := NewSignal(3)

	tests := []struct {
		name  string
		value Value[int]
		kind  ValueKind
		want  int
	}{
		{"constant", Const(7), Constant, 7},
		{"cell", FromSignal(count), Cell, 3},
		{"derived", Derive(func() int { return count.Get() * 2 }), Derived, 6},
		{"slice", FromLens(countLens(state)), Slice, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.value.Kind(), tt.kind)
			}
			if got := tt.value.Get(); got != tt.want {
				t.Errorf("Get() = %d, want %d", got, tt.want)
			}
			if got := tt.value.Peek(); got != tt.want {
				t.Errorf("Peek() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueSubscribe(t *testing.T) {
	count := NewSignal(1)
	v := Derive(func() int { return count.Get() + 1 })

	var got []int
	v.Subscribe(func(n int) { got = append(got, n) })
	count.Set(5)

	if len(got) != 1 || got[0] != 6 {
		t.Errorf("received %v, want [6]", got)
	}

	// Constants never notify; their unsubscribe is a no-op.
	unsub := Const("fixed").Subscribe(func(string) { t.Error("constant notified") })
	unsub()
}

func TestValueWritable(t *testing.T) {
	count := NewSignal(1)
	if w, ok := FromSignal(count).Writable(); !ok {
		t.Error("cell value should be writable")
	} else {
		w.Set(9)
	}
	if count.Peek() != 9 {
		t.Errorf("count = %d, want 9", count.Peek())
	}

	if _, ok := Const(1).Writable(); ok {
		t.Error("constant should not be writable")
	}
	if _, ok := Derive(func() int { return 1 }).Writable(); ok {
		t.Error("derived value should not be writable")
	}
}

func TestValueKindString(t *testing.T) {
	tests := []struct {
		kind ValueKind
		want string
	}{
		{Constant, "constant"},
		{Cell, "cell"},
		{Derived, "derived"},
		{Slice, "slice"},
		{ValueKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ValueKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
