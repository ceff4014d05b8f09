// Package instrument provides reactive.Observer implementations that
// export what a scope tree does: Prometheus metrics, OpenTelemetry spans
// and slog records. Combine several with Multi.
//
//	reg := prometheus.NewRegistry()
//	root := reactive.NewOwner(nil)
//	root.SetObserver(instrument.Multi(
//	    instrument.NewMetrics(instrument.WithRegistry(reg)),
//	    instrument.NewTracing(),
//	    instrument.NewLogger(slog.Default()),
//	))
package instrument
