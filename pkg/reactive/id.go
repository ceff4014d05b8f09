package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
// IDs are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// Sequence is a monotonic key generator. A keyed list owns one so that
// generated keys are never reused, even after the list is cleared.
// The zero value is ready to use and starts at 1.
type Sequence struct {
	n atomic.Uint64
}

// Next returns the next key.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Last returns the most recently generated key, or 0 if none was.
func (s *Sequence) Last() uint64 {
	return s.n.Load()
}
