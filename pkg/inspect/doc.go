// Package inspect serves a live view of a reactive scope tree over HTTP.
//
// The inspector exposes the persistable signals of a scope as JSON, lets
// an operator overwrite them, and streams every write to websocket
// clients:
//
//	GET  /healthz         liveness probe
//	GET  /stats           scope statistics
//	GET  /signals         all persistable signals
//	GET  /signals/{key}   one signal value
//	PUT  /signals/{key}   replace a signal value
//	GET  /events          websocket change feed
//	GET  /metrics         Prometheus metrics, when a gatherer is configured
//
// The Hub is a reactive.Observer. Attach it to the inspected scope
// (directly or through instrument.Multi) so writes reach /events:
//
//	root := reactive.NewOwner(nil)
//	srv := inspect.New(root, inspect.Config{Gatherer: registry})
//	root.SetObserver(instrument.Multi(srv.Hub(), metrics))
//	http.ListenAndServe(":7070", srv.Handler())
package inspect
