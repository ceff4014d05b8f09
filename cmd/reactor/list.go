package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signals/internal/demo"
	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

var defaultListScript = []string{"add", "add", "add", "inc:2", "inc:2", "dec:3", "rm:1", "add", "mv:4:0"}

func (a *app) listCmd() *cobra.Command {
	var initial int

	cmd := &cobra.Command{
		Use:   "list [op...]",
		Short: "Run the keyed list demo",
		Long: `Run the keyed list demo: a list of counters whose ids survive
insertions, removals and moves, with a derived total.

Each argument is one operation, applied in order:
  add        append a counter
  inc:ID     increment counter ID
  dec:ID     decrement counter ID
  rm:ID      remove counter ID
  mv:ID:POS  move counter ID to position POS
  clear      remove every counter

Without arguments a short script runs. The list is printed after every
operation.

Examples:
  reactor list
  reactor list add add inc:1 rm:2 add`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = defaultListScript
			}
			return a.runList(initial, args)
		},
	}

	cmd.Flags().IntVar(&initial, "initial", 0, "Counters to start with")

	return cmd
}

func (a *app) runList(initial int, ops []string) error {
	root := reactive.NewOwner(nil)
	defer root.Dispose()
	root.SetObserver(a.observer())

	cl := demo.NewCounterList(root, initial)
	a.printRows(dimStyle.Render("start"), cl)

	for _, op := range ops {
		if err := applyListOp(cl, op); err != nil {
			return err
		}
		a.printRows(op, cl)
	}
	return nil
}

func applyListOp(cl *demo.CounterList, op string) error {
	parts := strings.Split(op, ":")
	id := func(i int) (uint64, error) {
		if len(parts) <= i {
			return 0, badListOp(op)
		}
		n, err := strconv.ParseUint(parts[i], 10, 64)
		if err != nil {
			return 0, badListOp(op)
		}
		return n, nil
	}

	switch parts[0] {
	case "add":
		_, err := cl.Add()
		return err
	case "clear":
		cl.Clear()
		return nil
	case "inc", "dec":
		n, err := id(1)
		if err != nil {
			return err
		}
		if parts[0] == "inc" {
			return cl.Increment(n)
		}
		return cl.Decrement(n)
	case "rm":
		n, err := id(1)
		if err != nil {
			return err
		}
		if !cl.Remove(n) {
			return errors.New("R006").WithSubjectf("counter %d", n)
		}
		return nil
	case "mv":
		n, err := id(1)
		if err != nil {
			return err
		}
		pos, err := id(2)
		if err != nil {
			return err
		}
		return cl.Move(n, int(pos))
	default:
		return badListOp(op)
	}
}

func badListOp(op string) error {
	return errors.New("E401").
		WithSubject(op).
		WithSuggestion("Use add, inc:ID, dec:ID, rm:ID, mv:ID:POS or clear")
}

func (a *app) printRows(label string, cl *demo.CounterList) {
	var cells []string
	for _, r := range cl.Rows() {
		cells = append(cells, fmt.Sprintf("%s=%d", keyStyle.Render("#"+strconv.FormatUint(r.ID, 10)), r.Value))
	}
	body := strings.Join(cells, "  ")
	if body == "" {
		body = dimStyle.Render("(empty)")
	}
	fmt.Fprintf(a.out, "%-12s %s  %s\n", label, body, dimStyle.Render(fmt.Sprintf("total=%d", cl.Total.Get())))
}
