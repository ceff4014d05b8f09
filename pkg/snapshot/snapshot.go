package snapshot

import (
	"reflect"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

// Capture encodes the value of every non-transient persistable signal
// visible from owner.
func Capture(owner *reactive.Owner) (*Document, error) {
	doc := &Document{
		Version: Version,
		Created: time.Now().UTC(),
		Signals: make(map[string]cbor.RawMessage),
	}
	for key, p := range owner.Persistables() {
		if p.IsTransient() {
			continue
		}
		raw, err := encMode.Marshal(p.GetAny())
		if err != nil {
			return nil, errors.New("S206").WithSubject(key).Wrap(err)
		}
		doc.Signals[key] = raw
	}
	return doc, nil
}

// Report lists what Restore did.
type Report struct {
	// Restored are the keys whose signals were set.
	Restored []string `json:"restored"`

	// Skipped are the keys in the snapshot with no matching signal,
	// or whose signal is transient.
	Skipped []string `json:"skipped"`
}

// Restore sets the persistable signals visible from owner from doc.
// Every value is decoded before any signal is written, and the writes
// happen in one batch. When a write fails the signals already written
// are set back to their previous values before the batch closes, so
// subscribers see either the old or the fully restored state.
func Restore(owner *reactive.Owner, doc *Document) (Report, error) {
	var report Report
	targets := owner.Persistables()

	var writes []restoreWrite
	for _, key := range doc.Keys() {
		p, ok := targets[key]
		if !ok || p.IsTransient() {
			report.Skipped = append(report.Skipped, key)
			continue
		}
		ptr := p.NewValue()
		if err := decMode.Unmarshal(doc.Signals[key], ptr); err != nil {
			return Report{}, errors.New("S206").WithSubject(key).Wrap(err)
		}
		writes = append(writes, restoreWrite{key: key, p: p, value: reflect.ValueOf(ptr).Elem().Interface()})
	}

	restored, err := applyWrites(writes)
	if err != nil {
		return Report{Skipped: report.Skipped}, err
	}
	report.Restored = restored
	return report, nil
}

// restoreWrite is one decoded value waiting to be written.
type restoreWrite struct {
	key   string
	p     reactive.Persistable
	value any
}

// applyWrites performs writes in one batch and returns the keys written.
// On failure it undoes the writes already made, newest first.
func applyWrites(writes []restoreWrite) ([]string, error) {
	var (
		restored []string
		prior    []any
		err      error
	)
	reactive.Batch(func() {
		for _, w := range writes {
			old := w.p.GetAny()
			if serr := w.p.SetAny(w.value); serr != nil {
				err = errors.New("S206").WithSubject(w.key).Wrap(serr)
				break
			}
			restored = append(restored, w.key)
			prior = append(prior, old)
		}
		if err == nil {
			return
		}
		for i := len(restored) - 1; i >= 0; i-- {
			_ = writes[i].p.SetAny(prior[i])
		}
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
