package main

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/signals/internal/demo"
	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
	"github.com/vango-dev/signals/pkg/snapshot"
)

func (a *app) snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, restore and inspect snapshots of persistable signals",
		Long: `Snapshots hold the persistable signals of a scope tree, encoded as
deterministic CBOR, optionally compressed and protected by a keyed
BLAKE3 digest.

The demo state used by these commands holds counter.count and
global.state. The store (file, memory or s3) comes from the snapshot
section of the config.`,
	}

	cmd.AddCommand(
		a.snapshotSaveCmd(),
		a.snapshotLoadCmd(),
		a.snapshotInspectCmd(),
		a.snapshotListCmd(),
		a.snapshotDeleteCmd(),
	)
	return cmd
}

// newWorld mounts the demos whose signals are persisted.
func (a *app) newWorld() (*reactive.Owner, error) {
	root := reactive.NewOwner(nil)
	root.SetObserver(a.observer())
	demo.NewCounter(root)
	if _, err := demo.NewGlobalApp(root); err != nil {
		root.Dispose()
		return nil, err
	}
	return root, nil
}

func (a *app) snapshotSaveCmd() *cobra.Command {
	var (
		sets        []string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Capture the demo state into a snapshot",
		Long: `Capture the demo state into a snapshot. Values are set with
--set key=JSON before capturing. Without a name a unique one is
generated.

Examples:
  reactor snapshot save --set counter.count=3
  reactor snapshot save work --set 'global.state={"count":5,"name":"ada"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			comp := a.cfg.SnapshotCompression()
			if cmd.Flags().Changed("compression") {
				var err error
				if comp, err = snapshot.ParseCompression(compression); err != nil {
					return err
				}
			}
			return a.runSnapshotSave(cmd.Context(), name, sets, comp)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a signal before capturing (key=JSON, repeatable)")
	cmd.Flags().StringVar(&compression, "compression", "", "Compression: none, lz4 or zstd (default from config)")

	return cmd
}

func (a *app) runSnapshotSave(ctx context.Context, name string, sets []string, comp snapshot.Compression) error {
	ctx = orBackground(ctx)
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	root, err := a.newWorld()
	if err != nil {
		return err
	}
	defer root.Dispose()

	if err := applySets(root, sets); err != nil {
		return err
	}

	name, err = snapshot.Save(ctx, store, name, root, comp)
	if err != nil {
		return err
	}
	data, err := store.Get(ctx, name)
	if err != nil {
		return err
	}
	h, _, err := snapshot.ReadHeader(data)
	if err != nil {
		return err
	}
	a.success("Saved %s", keyStyle.Render(name))
	a.info("%s", h)
	return nil
}

// applySets writes key=JSON assignments into the persistable signals of root.
func applySets(root *reactive.Owner, sets []string) error {
	all := root.Persistables()
	for _, set := range sets {
		key, raw, ok := strings.Cut(set, "=")
		if !ok {
			return errors.New("E401").
				WithSubject(set).
				WithSuggestion("Use --set key=JSON, e.g. --set counter.count=3")
		}
		p, ok := all[key]
		if !ok {
			return errors.New("I300").
				WithSubject(key).
				WithSuggestion("Known keys: " + strings.Join(root.PersistKeys(), ", "))
		}
		ptr := p.NewValue()
		if err := json.Unmarshal([]byte(raw), ptr); err != nil {
			return errors.New("I301").WithSubject(key).Wrap(err)
		}
		if err := p.SetAny(reflect.ValueOf(ptr).Elem().Interface()); err != nil {
			return errors.New("I301").WithSubject(key).Wrap(err)
		}
	}
	return nil
}

func (a *app) snapshotLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Restore a snapshot into the demo state and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := orBackground(cmd.Context())
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			root, err := a.newWorld()
			if err != nil {
				return err
			}
			defer root.Dispose()

			report, err := snapshot.Load(ctx, store, args[0], root)
			if err != nil {
				return err
			}
			a.success("Restored %d signals from %s", len(report.Restored), keyStyle.Render(args[0]))
			if len(report.Skipped) > 0 {
				a.info("skipped unknown keys: %s", strings.Join(report.Skipped, ", "))
			}
			all := root.Persistables()
			for _, key := range root.PersistKeys() {
				a.printValue(key, all[key].GetAny())
			}
			return nil
		},
	}
}

func (a *app) snapshotInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Print a snapshot's header and values without restoring it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := orBackground(cmd.Context())
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			data, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			doc, h, err := snapshot.Decode(data)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, headerStyle.Render(args[0]))
			a.info("format:   %s", h)
			a.info("digest:   %s", h.Digest)
			a.info("created:  %s (%s)", doc.Created.Format("2006-01-02 15:04:05 MST"), humanize.Time(doc.Created))
			for _, key := range doc.Keys() {
				v, _, err := doc.Value(key)
				if err != nil {
					return errors.New("S200").WithSubject(key).Wrap(err)
				}
				a.printValue(key, v)
			}
			return nil
		},
	}
}

func (a *app) snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := orBackground(cmd.Context())
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			infos, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				a.info("no snapshots")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, humanize.Bytes(uint64(info.Size)), humanize.Time(info.Modified))
			}
			return tw.Flush()
		},
	}
}

func (a *app) snapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := orBackground(cmd.Context())
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			a.success("Deleted %s", keyStyle.Render(args[0]))
			return nil
		},
	}
}

func (a *app) printValue(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", v))
	}
	a.info("%s = %s", keyStyle.Render(key), data)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
