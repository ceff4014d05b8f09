package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/signals/internal/demo"
	"github.com/vango-dev/signals/pkg/reactive"
)

const (
	maxBarWidth = 60
	padding     = 2
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	oddStyle   = titleStyle.Foreground(lipgloss.Color("9"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// countChangedMsg carries a new count from the subscription.
type countChangedMsg int

// Model is the Bubble Tea model of the counter demo.
type Model struct {
	counter *demo.Counter
	keys    KeyMap
	help    help.Model
	bar     progress.Model

	// changes receives counts from the subscription; the buffer
	// absorbs bursts and the latest value wins.
	changes     chan int
	unsubscribe reactive.Unsubscribe

	// done is closed by Close and releases a pending waitForChange.
	done      chan struct{}
	closeOnce sync.Once

	count    int
	quitting bool
}

// New creates a model rendering counter and subscribes to it.
// Call Close when the program exits.
func New(counter *demo.Counter) *Model {
	m := &Model{
		counter: counter,
		keys:    DefaultKeyMap,
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		changes: make(chan int, 16),
		done:    make(chan struct{}),
		count:   counter.Count.Peek(),
	}
	m.bar.Width = maxBarWidth
	m.unsubscribe = counter.Count.Subscribe(func(n int) {
		select {
		case m.changes <- n:
		default:
		}
	})
	return m
}

// Close stops listening to the counter. It may be called more than once.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.unsubscribe()
		close(m.done)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-m.changes:
			return countChangedMsg(n)
		case <-m.done:
			return nil
		}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Increment):
			m.counter.Increment()
		case key.Matches(msg, m.keys.Decrement):
			m.counter.Decrement()
		case key.Matches(msg, m.keys.Reset):
			m.counter.Reset()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case countChangedMsg:
		m.count = int(msg)
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-padding*2-8, maxBarWidth), 10)
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle
	if m.counter.Class() == demo.OddClass {
		title = oddStyle
	}

	var b strings.Builder
	pad := strings.Repeat(" ", padding)
	b.WriteString("\n")
	b.WriteString(pad + title.Render("Hello Reactive Counter!") + "\n")
	b.WriteString(pad + "Click me: " + countStyle.Render(fmt.Sprint(m.count)) + "\n\n")
	b.WriteString(pad + m.bar.ViewAs(m.counter.Progress()))
	b.WriteString(pad + fmt.Sprintf("%d/%d", m.counter.Double.Peek(), demo.ProgressMax) + "\n\n")
	b.WriteString(pad + dimStyle.Render(m.help.View(m.keys)) + "\n")
	return b.String()
}
