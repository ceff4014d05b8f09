package reactive

import "log/slog"

// Batch runs fn with notifications deferred. Every listener triggered
// inside fn is notified once, in the order it was first triggered, when
// the outermost Batch returns. Outside Batch every write notifies
// synchronously.
//
//	reactive.Batch(func() {
//		form.Name.Set("")
//		form.Email.Set("")
//	})
func Batch(fn func()) {
	t, release := enter()
	t.depth++
	defer func() {
		t.depth--
		if t.depth == 0 {
			flush(t)
		}
		release()
	}()
	fn()
}

// flush delivers the deferred notifications of t once per listener, in
// first-trigger order.
func flush(t *tracker) {
	seen := make(map[uint64]bool)
	for {
		updates := t.drain()
		if len(updates) == 0 {
			return
		}
		for _, listener := range updates {
			id := listener.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			notify(listener)
		}
	}
}

// Untracked runs fn without subscribing the current listener to the
// values fn reads. Peek does the same for a single read.
func Untracked(fn func()) {
	WithListener(nil, fn)
}

// Tx is Batch under the name callers use for a unit of writes.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed is Tx with its boundaries logged at debug level on the
// default slog logger.
func TxNamed(name string, fn func()) {
	slog.Debug("reactive: transaction start", "tx", name)
	defer slog.Debug("reactive: transaction end", "tx", name)
	Batch(fn)
}
