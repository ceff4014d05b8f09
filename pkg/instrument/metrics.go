package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

// metricsConfig holds the settings applied by MetricsOption values.
type metricsConfig struct {
	namespace   string
	subsystem   string
	constLabels prometheus.Labels
	buckets     []float64
	registry    prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*metricsConfig)

// WithNamespace prefixes every metric name. Default "reactive".
func WithNamespace(namespace string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = namespace }
}

// WithSubsystem inserts a subsystem between namespace and metric name.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *metricsConfig) { c.subsystem = subsystem }
}

// WithConstLabels attaches fixed labels to every series.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *metricsConfig) { c.constLabels = labels }
}

// WithBuckets sets the buckets of the memo compute-time histogram.
// Default prometheus.DefBuckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *metricsConfig) { c.buckets = buckets }
}

// WithRegistry registers the metrics on r instead of the default registerer.
func WithRegistry(r prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) { c.registry = r }
}

// Metrics is an Observer that records Prometheus metrics. With the
// default namespace it exports:
//
//	reactive_writes_total{kind}             committed writes
//	reactive_notifications_total{kind}      subscriber deliveries
//	reactive_memo_computations_total        memo recomputations
//	reactive_memo_compute_seconds           memo compute time
//	reactive_scopes_disposed_total          torn-down scopes
//	reactive_errors_total{code}             raised contract violations
type Metrics struct {
	writesTotal        *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	memoComputations   prometheus.Counter
	memoDuration       prometheus.Histogram
	scopesDisposed     prometheus.Counter
	errorsTotal        *prometheus.CounterVec
}

// NewMetrics registers the metrics and returns the observer. Registering
// twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := metricsConfig{
		namespace: "reactive",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.registry)

	counter := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.constLabels,
		}
	}

	return &Metrics{
		writesTotal: factory.NewCounterVec(
			counter("writes_total", "Committed writes by primitive kind."), []string{"kind"}),
		notificationsTotal: factory.NewCounterVec(
			counter("notifications_total", "Subscriber deliveries by primitive kind."), []string{"kind"}),
		memoComputations: factory.NewCounter(
			counter("memo_computations_total", "Memo recomputations.")),
		memoDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "memo_compute_seconds",
			Help:        "Time spent computing memos.",
			ConstLabels: cfg.constLabels,
			Buckets:     cfg.buckets,
		}),
		scopesDisposed: factory.NewCounter(
			counter("scopes_disposed_total", "Torn-down scopes.")),
		errorsTotal: factory.NewCounterVec(
			counter("errors_total", "Raised contract violations by error code."), []string{"code"}),
	}
}

func (m *Metrics) SignalWritten(info reactive.Info) {
	m.writesTotal.WithLabelValues(string(info.Kind)).Inc()
}

func (m *Metrics) SignalNotified(info reactive.Info, subscribers int) {
	m.notificationsTotal.WithLabelValues(string(info.Kind)).Add(float64(subscribers))
}

func (m *Metrics) MemoComputed(_ reactive.Info, took time.Duration) {
	m.memoComputations.Inc()
	m.memoDuration.Observe(took.Seconds())
}

func (m *Metrics) ScopeDisposed(uint64) {
	m.scopesDisposed.Inc()
}

func (m *Metrics) ErrorRaised(err error) {
	m.errorsTotal.WithLabelValues(errorCode(err)).Inc()
}

// errorCode returns the structured error code of err, or "unknown".
func errorCode(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "unknown"
}

var _ reactive.Observer = (*Metrics)(nil)
