package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vango-dev/signals/internal/demo"
	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/internal/tui"
	"github.com/vango-dev/signals/pkg/reactive"
	"github.com/vango-dev/signals/pkg/snapshot"
)

func (a *app) counterCmd() *cobra.Command {
	var (
		clicks  int
		plain   bool
		session string
	)

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Run the counter demo",
		Long: `Run the counter demo: a count, its double shown as a progress
bar out of 100, and a heading that turns red while the count is odd.

The interactive terminal UI starts by default. With --plain the
counter is clicked --clicks times and the result printed instead.

With --session the count is restored from the named snapshot on start
and saved back on exit.

Examples:
  reactor counter
  reactor counter --plain --clicks 3
  reactor counter --session work`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCounter(cmd.Context(), clicks, plain, session)
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "n", 0, "Clicks to apply before showing the counter")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the result instead of starting the terminal UI")
	cmd.Flags().StringVarP(&session, "session", "s", "", "Snapshot name to restore from and save to")

	return cmd
}

func (a *app) runCounter(ctx context.Context, clicks int, plain bool, session string) error {
	ctx = orBackground(ctx)
	root := reactive.NewOwner(nil)
	defer root.Dispose()
	root.SetObserver(a.observer())

	counter := demo.NewCounter(root)

	var store snapshot.Store
	if session != "" {
		var err error
		if store, err = a.openStore(ctx); err != nil {
			return err
		}
		report, err := snapshot.Load(ctx, store, session, root)
		switch {
		case errors.Is(err, snapshot.ErrNotFound):
			a.logger.Info("starting new session", "session", session)
		case err != nil:
			return err
		default:
			a.logger.Info("session restored", "session", session, "signals", len(report.Restored))
		}
	}

	for i := 0; i < clicks; i++ {
		counter.Increment()
	}

	if plain {
		a.printCounter(counter)
	} else {
		m := tui.New(counter)
		_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
		m.Close()
		if err != nil {
			return err
		}
	}

	if store != nil {
		if _, err := snapshot.Save(ctx, store, session, root, a.cfg.SnapshotCompression()); err != nil {
			return err
		}
		a.success("Saved session %s", keyStyle.Render(session))
	}
	return nil
}

func (a *app) printCounter(c *demo.Counter) {
	heading := headerStyle.Render("Hello Reactive Counter!")
	if c.Class() == demo.OddClass {
		heading = oddStyle.Render("Hello Reactive Counter!")
	}
	fmt.Fprintln(a.out, heading)
	fmt.Fprintf(a.out, "Click me: %d\n", c.Count.Get())
	fmt.Fprintf(a.out, "Progress: %d/%d\n", c.Double.Get(), demo.ProgressMax)
	class := c.Class()
	if class == "" {
		class = dimStyle.Render("(none)")
	}
	fmt.Fprintf(a.out, "Class:    %s\n", class)
}
