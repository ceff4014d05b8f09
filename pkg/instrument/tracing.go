package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/signals/pkg/reactive"
)

// Default tracer name for reactive instrumentation.
const defaultTracerName = "github.com/vango-dev/signals"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer.
	TracerName string

	// Provider is the tracer provider (default: the global provider).
	Provider trace.TracerProvider

	// TraceWrites also records a span for every committed write.
	// Disabled by default; writes are frequent.
	TraceWrites bool

	// Context is the parent of every span (default: context.Background()).
	Context context.Context
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithTraceWrites enables spans for writes.
func WithTraceWrites(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.TraceWrites = enabled
	}
}

// WithParentContext sets the context spans are started from.
func WithParentContext(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Context = ctx
	}
}

// Tracing is an Observer that records OpenTelemetry spans for memo
// computations, scope teardown, raised errors and optionally writes.
type Tracing struct {
	reactive.NopObserver

	tracer trace.Tracer
	ctx    context.Context
	writes bool
}

// NewTracing creates the observer.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.Provider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{
		tracer: tp.Tracer(config.TracerName),
		ctx:    config.Context,
		writes: config.TraceWrites,
	}
}

func infoAttributes(info reactive.Info) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int64("reactive.id", int64(info.ID)),
		attribute.String("reactive.kind", string(info.Kind)),
	}
	if info.Name != "" {
		attrs = append(attrs, attribute.String("reactive.name", info.Name))
	}
	return attrs
}

func (t *Tracing) SignalWritten(info reactive.Info) {
	if !t.writes {
		return
	}
	_, span := t.tracer.Start(t.ctx, "reactive.write", trace.WithAttributes(infoAttributes(info)...))
	span.End()
}

// MemoComputed records a span covering the computation.
func (t *Tracing) MemoComputed(info reactive.Info, took time.Duration) {
	end := time.Now()
	_, span := t.tracer.Start(t.ctx, "reactive.memo",
		trace.WithTimestamp(end.Add(-took)),
		trace.WithAttributes(infoAttributes(info)...),
	)
	span.End(trace.WithTimestamp(end))
}

func (t *Tracing) ScopeDisposed(id uint64) {
	_, span := t.tracer.Start(t.ctx, "reactive.scope.dispose",
		trace.WithAttributes(attribute.Int64("reactive.scope_id", int64(id))),
	)
	span.End()
}

func (t *Tracing) ErrorRaised(err error) {
	_, span := t.tracer.Start(t.ctx, "reactive.error",
		trace.WithAttributes(attribute.String("reactive.error_code", errorCode(err))),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

var _ reactive.Observer = (*Tracing)(nil)
