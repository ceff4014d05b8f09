package store

import (
	"errors"
	"testing"

	"github.com/vango-dev/signals/pkg/reactive"
)

var (
	// Define values at package level to simulate real usage
	globalCounter = NewGlobal(0)
	sharedCounter = NewShared(0)
)

func TestGlobal(t *testing.T) {
	globalCounter.Set(10)
	if globalCounter.Get() != 10 {
		t.Errorf("Expected 10, got %d", globalCounter.Get())
	}
	globalCounter.Set(0)
}

func TestGlobalIgnoresCurrentScope(t *testing.T) {
	scope := reactive.NewOwner(nil)
	var g *Global[string]
	scope.Run(func() {
		g = NewGlobal("online")
	})
	scope.Dispose()

	if _, err := g.TryGet(); err != nil {
		t.Errorf("global signal should outlive the scope it was created in: %v", err)
	}
}

func TestSharedPerInstance(t *testing.T) {
	rootA := reactive.NewOwner(nil)
	if _, err := Mount(rootA); err != nil {
		t.Fatalf("Mount error = %v", err)
	}
	rootB := reactive.NewOwner(nil)
	if _, err := Mount(rootB); err != nil {
		t.Fatalf("Mount error = %v", err)
	}

	rootA.Run(func() {
		if sharedCounter.Get() != 0 {
			t.Errorf("Instance A: Expected 0, got %d", sharedCounter.Get())
		}
		sharedCounter.Set(5)
	})

	rootB.Run(func() {
		if sharedCounter.Get() != 0 {
			t.Errorf("Instance B: Expected 0, got %d", sharedCounter.Get())
		}
		sharedCounter.Update(func(n int) int { return n + 10 })
	})

	rootA.Run(func() {
		if sharedCounter.Get() != 5 {
			t.Errorf("Instance A (revisit): Expected 5, got %d", sharedCounter.Get())
		}
	})
	rootB.Run(func() {
		if sharedCounter.Peek() != 10 {
			t.Errorf("Instance B (revisit): Expected 10, got %d", sharedCounter.Peek())
		}
	})
}

func TestSharedFromDescendantScope(t *testing.T) {
	root := reactive.NewOwner(nil)
	st, _ := Mount(root)
	child := reactive.NewOwner(root)

	sig, err := sharedCounter.In(child)
	if err != nil {
		t.Fatalf("In error = %v", err)
	}
	again, _ := sharedCounter.In(root)
	if sig != again {
		t.Error("one instance should hold a single signal per definition")
	}
	if sig.Owner() != root {
		t.Error("instance signals should belong to the store scope")
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}

	// Tearing down the view scope leaves the instance state alone.
	child.Dispose()
	if _, err := sig.TryGet(); err != nil {
		t.Errorf("TryGet error = %v", err)
	}

	root.Dispose()
	if _, err := sig.TryGet(); !errors.Is(err, reactive.ErrUseAfterTeardown) {
		t.Errorf("TryGet after instance teardown error = %v, want ErrUseAfterTeardown", err)
	}
}

func TestSharedMissingStore(t *testing.T) {
	root := reactive.NewOwner(nil)
	if _, err := sharedCounter.In(root); !errors.Is(err, reactive.ErrMissingProvider) {
		t.Errorf("In error = %v, want ErrMissingProvider", err)
	}

	var err error
	root.Run(func() {
		err = reactive.Catch(func() { sharedCounter.Get() })
	})
	if !errors.Is(err, reactive.ErrMissingProvider) {
		t.Errorf("Get error = %v, want ErrMissingProvider", err)
	}
}

func TestSharedPersistKey(t *testing.T) {
	theme := NewShared("light", reactive.PersistKey("theme"))
	root := reactive.NewOwner(nil)
	_, _ = Mount(root)

	root.Run(func() {
		theme.Set("dark")
	})

	p, ok := root.Persistables()["theme"]
	if !ok {
		t.Fatal("shared value with PersistKey should be in the instance catalog")
	}
	if p.GetAny() != "dark" {
		t.Errorf("persisted value = %v, want dark", p.GetAny())
	}
}
