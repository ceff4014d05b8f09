package instrument

import (
	"time"

	"github.com/vango-dev/signals/pkg/reactive"
)

type multi []reactive.Observer

// Multi returns an Observer that forwards every event to each of
// observers in order. Nil observers are skipped.
func Multi(observers ...reactive.Observer) reactive.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) SignalWritten(info reactive.Info) {
	for _, o := range m {
		o.SignalWritten(info)
	}
}

func (m multi) SignalNotified(info reactive.Info, subscribers int) {
	for _, o := range m {
		o.SignalNotified(info, subscribers)
	}
}

func (m multi) MemoComputed(info reactive.Info, took time.Duration) {
	for _, o := range m {
		o.MemoComputed(info, took)
	}
}

func (m multi) ScopeDisposed(id uint64) {
	for _, o := range m {
		o.ScopeDisposed(id)
	}
}

func (m multi) ErrorRaised(err error) {
	for _, o := range m {
		o.ErrorRaised(err)
	}
}
