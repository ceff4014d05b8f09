package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/signals/internal/demo"
	"github.com/vango-dev/signals/pkg/inspect"
	"github.com/vango-dev/signals/pkg/instrument"
	"github.com/vango-dev/signals/pkg/reactive"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr     string
		readOnly bool
		tick     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspector over the demo applications",
		Long: `Mount the counter, keyed list and global state demos in one scope
tree and serve the inspector:

  GET  /healthz        liveness probe
  GET  /stats          scope statistics
  GET  /signals        persistable signals as JSON
  GET  /signals/{key}  one signal
  PUT  /signals/{key}  replace a signal value
  GET  /events         websocket feed of every write
  GET  /metrics        Prometheus metrics (when metrics are enabled)

With --tick the counter is clicked periodically so the feed has
something to show.

Examples:
  reactor serve
  reactor serve --addr :7070 --tick 1s
  curl -X PUT -d 41 localhost:7070/signals/counter.count`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Inspector.Addr = addr
			}
			if cmd.Flags().Changed("read-only") {
				a.cfg.Inspector.ReadOnly = readOnly
			}
			return a.runServe(tick)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Reject writes through the inspector")
	cmd.Flags().DurationVar(&tick, "tick", 0, "Click the counter at this interval (0 disables)")

	return cmd
}

func (a *app) runServe(tick time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := reactive.NewOwner(nil)
	defer root.Dispose()

	cfg := inspect.Config{
		Logger:   a.logger,
		ReadOnly: a.cfg.Inspector.ReadOnly,
	}
	observers := []reactive.Observer{instrument.NewLogger(a.logger)}

	if a.cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, instrument.NewMetrics(
			instrument.WithRegistry(registry),
			instrument.WithNamespace(a.cfg.Metrics.Namespace),
			instrument.WithSubsystem(a.cfg.Metrics.Subsystem),
		))
		cfg.Gatherer = registry
	}
	if a.cfg.Tracing.Enabled {
		observers = append(observers, instrument.NewTracing(
			instrument.WithTracerName(a.cfg.Tracing.TracerName),
			instrument.WithTraceWrites(a.cfg.Tracing.TraceWrites),
			instrument.WithParentContext(ctx),
		))
	}

	srv := inspect.New(root, cfg)
	defer srv.Close()
	root.SetObserver(instrument.Multi(append(observers, srv.Hub())...))

	counter := demo.NewCounter(root)
	demo.NewCounterList(root, 3)
	if _, err := demo.NewGlobalApp(root); err != nil {
		return err
	}

	if tick > 0 {
		go func() {
			t := time.NewTicker(tick)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					counter.Increment()
				}
			}
		}()
	}

	server := &http.Server{
		Addr:              a.cfg.Inspector.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	a.success("Inspector listening on %s", keyStyle.Render("http://"+a.cfg.Inspector.Addr))
	a.info("signals: %v", root.PersistKeys())

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down inspector")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	srv.Close()
	return server.Shutdown(shutdownCtx)
}
