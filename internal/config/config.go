package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/snapshot"
)

const (
	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactive"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/signals"

	// DefaultSnapshotDir is the default directory of the file snapshot store.
	DefaultSnapshotDir = ".reactor/snapshots"

	// DefaultShutdownTimeout bounds graceful inspector shutdown.
	DefaultShutdownTimeout = "5s"
)

// FileNames lists the configuration file names Load looks for, in order.
var FileNames = []string{"reactor.yaml", "reactor.yml", "reactor.json", "reactor.jsonc"}

// Config represents a reactor configuration file.
type Config struct {
	// Log configures the process logger.
	Log LogConfig `yaml:"log" json:"log"`

	// Inspector configures the HTTP inspector started by "reactor serve".
	Inspector InspectorConfig `yaml:"inspector" json:"inspector"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Tracing configures the OpenTelemetry observer.
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`

	// Snapshot configures where snapshots are stored.
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is text or json.
	Format string `yaml:"format" json:"format"`
}

// InspectorConfig contains inspector settings.
type InspectorConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" json:"addr"`

	// ReadOnly rejects writes through the inspector.
	ReadOnly bool `yaml:"readOnly" json:"readOnly"`

	// ShutdownTimeout is the graceful shutdown window (e.g., "5s").
	ShutdownTimeout string `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Subsystem string `yaml:"subsystem" json:"subsystem"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	TracerName string `yaml:"tracerName" json:"tracerName"`

	// TraceWrites emits a span per signal write. Noisy.
	TraceWrites bool `yaml:"traceWrites" json:"traceWrites"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Store is file, memory or s3.
	Store string `yaml:"store" json:"store"`

	// Dir is the file store directory, relative to the config file.
	Dir string `yaml:"dir" json:"dir"`

	// Bucket and Prefix locate snapshots in S3.
	Bucket string `yaml:"bucket" json:"bucket"`
	Prefix string `yaml:"prefix" json:"prefix"`

	// Region and Endpoint configure the S3 client. Region falls back to
	// AWS_REGION; Endpoint selects an S3-compatible service and
	// switches to path-style addressing.
	Region   string `yaml:"region" json:"region"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Compression is none, lz4 or zstd.
	Compression string `yaml:"compression" json:"compression"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Inspector: InspectorConfig{
			Addr:            DefaultInspectorAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Snapshot: SnapshotConfig{
			Store:       "file",
			Dir:         DefaultSnapshotDir,
			Prefix:      "snapshots/",
			Compression: "zstd",
		},
	}
}

// Find returns the first configuration file of dir named in FileNames.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Load reads the configuration file found in dir.
func Load(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return nil, errors.New("C100").
			WithDetail("No " + strings.Join(FileNames, ", ") + " found in " + dir)
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. YAML files
// end in .yaml or .yml; JSON files end in .json or .jsonc and may carry
// comments and trailing commas.
func LoadFile(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json", ".jsonc":
	default:
		return nil, errors.New("C103").WithSubject(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C100").WithSubject(path)
		}
		return nil, errors.New("C101").WithSubject(path).Wrap(err)
	}

	cfg := New()
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
	if err != nil {
		return nil, errors.New("C101").
			WithSubject(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Inspector.ShutdownTimeout == "" {
		c.Inspector.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}

	if c.Snapshot.Store == "" {
		c.Snapshot.Store = "file"
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Snapshot.Compression == "" {
		c.Snapshot.Compression = "zstd"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", c.Log.Format, "must be text or json")
	}

	if d, err := time.ParseDuration(c.Inspector.ShutdownTimeout); err != nil || d < 0 {
		return invalid("inspector.shutdownTimeout", c.Inspector.ShutdownTimeout, "must be a non-negative duration such as 5s")
	}

	switch c.Snapshot.Store {
	case "file", "memory":
	case "s3":
		if c.Snapshot.Bucket == "" {
			return invalid("snapshot.bucket", "", "is required when snapshot.store is s3")
		}
	default:
		return invalid("snapshot.store", c.Snapshot.Store, "must be file, memory or s3")
	}
	if _, err := snapshot.ParseCompression(c.Snapshot.Compression); err != nil {
		return invalid("snapshot.compression", c.Snapshot.Compression, "must be none, lz4 or zstd")
	}
	return nil
}

func invalid(field, value, detail string) *errors.Error {
	return errors.New("C102").
		WithSubjectf("%s=%q", field, value).
		WithDetail(field + " " + detail)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ShutdownTimeout returns the parsed inspector shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Inspector.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// SnapshotDir returns the file store directory. Relative paths resolve
// against the directory of the config file.
func (c *Config) SnapshotDir() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// SnapshotCompression returns the parsed snapshot compression.
func (c *Config) SnapshotCompression() snapshot.Compression {
	comp, err := snapshot.ParseCompression(c.Snapshot.Compression)
	if err != nil {
		return snapshot.CompressionZstd
	}
	return comp
}
