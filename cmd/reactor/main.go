package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vango-dev/signals/internal/config"
	"github.com/vango-dev/signals/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries the state shared by every command: the loaded
// configuration and the process logger.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "Fine-grained reactive state, from the terminal",
		Long: `Reactor drives the reactive value store: signals, derived values,
slices, scoped context and keyed lists.

Commands run the demo applications, serve a live inspector with a
websocket change feed and Prometheus metrics, and save or restore
snapshots of persistable signals.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	rootCmd.PersistentFlags().AddFlagSet(a.globalFlags())

	rootCmd.AddCommand(
		a.counterCmd(),
		a.listCmd(),
		a.globalCmd(),
		a.serveCmd(),
		a.snapshotCmd(),
		versionCmd(),
	)
	return rootCmd
}

// globalFlags returns the flags every command accepts.
func (a *app) globalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVarP(&a.configPath, "config", "c", "", "Config file (default: reactor.yaml, .yml, .json or .jsonc in the working directory)")
	fs.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&a.logFormat, "log-format", "", "Log format: text or json (overrides config)")
	return fs
}

// setup loads the configuration, applies flag overrides and installs
// the process logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = strings.ToLower(a.logFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(a.errOut, cfg)
	slog.SetDefault(a.logger)
	if cfg.Path() != "" {
		a.logger.Debug("config loaded", "path", cfg.Path())
	}
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	if path, ok := config.Find("."); ok {
		return config.LoadFile(path)
	}
	return config.New(), nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// success prints a success message.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", okStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.out, "  %s\n", fmt.Sprintf(format, args...))
}
