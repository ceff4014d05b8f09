package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/signals/internal/demo"
	"github.com/vango-dev/signals/pkg/reactive"
)

func newModel(t *testing.T) (*Model, *demo.Counter) {
	t.Helper()
	root := reactive.NewOwner(nil)
	c := demo.NewCounter(root)
	m := New(c)
	t.Cleanup(func() {
		m.Close()
		root.Dispose()
	})
	return m, c
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain feeds pending subscription messages back into the model.
func drain(t *testing.T, m *Model) {
	t.Helper()
	for {
		select {
		case n := <-m.changes:
			m.Update(countChangedMsg(n))
		default:
			return
		}
	}
}

func TestKeysDriveCounter(t *testing.T) {
	m, c := newModel(t)

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want int
	}{
		{"plus", runes("+"), 1},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, 2},
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, 3},
		{"minus", runes("-"), 2},
		{"reset", runes("r"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := m.Update(tt.msg)
			if cmd != nil {
				t.Errorf("Update(%s) returned a command", tt.name)
			}
			if got := c.Count.Peek(); got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestViewFollowsCount(t *testing.T) {
	m, c := newModel(t)

	for i := 0; i < 3; i++ {
		m.Update(runes("+"))
	}
	drain(t, m)

	view := m.View()
	if !strings.Contains(view, "Click me: 3") {
		t.Errorf("view missing count:\n%s", view)
	}
	if !strings.Contains(view, "6/100") {
		t.Errorf("view missing double:\n%s", view)
	}

	// Writes from outside the TUI reach the view too.
	c.Count.Set(10)
	drain(t, m)
	if view := m.View(); !strings.Contains(view, "Click me: 10") {
		t.Errorf("view missing external write:\n%s", view)
	}
}

func TestChangeMessage(t *testing.T) {
	m, c := newModel(t)
	cmd := m.Init()

	c.Increment()
	msg := cmd()
	if got, ok := msg.(countChangedMsg); !ok || got != 1 {
		t.Fatalf("Init command = %#v, want countChangedMsg(1)", msg)
	}

	_, next := m.Update(msg)
	if next == nil {
		t.Error("change message should re-arm the subscription command")
	}
	if m.count != 1 {
		t.Errorf("m.count = %d, want 1", m.count)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newModel(t)

	short := m.View()
	m.Update(runes("?"))
	full := m.View()
	if !strings.Contains(full, "reset") || strings.Contains(short, "reset") {
		t.Errorf("full help should add the reset binding\nshort:\n%s\nfull:\n%s", short, full)
	}
}

func TestWindowResize(t *testing.T) {
	m, _ := newModel(t)

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.bar.Width != 28 {
		t.Errorf("bar width = %d, want 28", m.bar.Width)
	}
	m.Update(tea.WindowSizeMsg{Width: 5, Height: 10})
	if m.bar.Width != 10 {
		t.Errorf("bar width = %d, want 10", m.bar.Width)
	}
}

func TestCloseStopsUpdates(t *testing.T) {
	m, c := newModel(t)
	m.Close()
	c.Increment()
	select {
	case n := <-m.changes:
		t.Errorf("received %d after Close", n)
	default:
	}
}

func TestCloseReleasesPendingWait(t *testing.T) {
	m, _ := newModel(t)
	cmd := m.Init()

	got := make(chan tea.Msg, 1)
	go func() { got <- cmd() }()

	m.Close()
	m.Close()

	select {
	case msg := <-got:
		if msg != nil {
			t.Errorf("wait returned %#v after Close, want nil", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("waitForChange still blocked after Close")
	}
}
