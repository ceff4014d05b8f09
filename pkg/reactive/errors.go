package reactive

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vango-dev/signals/internal/errors"
)

// Sentinel errors. Errors produced by this package carry a subject and
// a suggestion but compare equal to these under errors.Is.
var (
	// ErrMissingProvider is returned when no scope between the current one
	// and the root provides a context key.
	ErrMissingProvider error = errors.New("R001")

	// ErrDuplicateKey is returned when a keyed list already holds the key.
	ErrDuplicateKey error = errors.New("R002")

	// ErrCyclicDependency is raised when a memo reads itself while computing.
	ErrCyclicDependency error = errors.New("R003")

	// ErrUseAfterTeardown is raised when a value owned by a torn-down scope
	// is read or written.
	ErrUseAfterTeardown error = errors.New("R004")

	// ErrTypeMismatch is returned by SetAny when the value has the wrong type.
	ErrTypeMismatch error = errors.New("R005")

	// ErrUnknownKey is returned when a keyed list has no entry with the key.
	ErrUnknownKey error = errors.New("R006")
)

func missingProviderError(key any) *errors.Error {
	return errors.New("R001").WithSubject(describeKey(key))
}

func duplicateKeyError(key any) *errors.Error {
	return errors.New("R002").WithSubjectf("%v", key)
}

func unknownKeyError(key any) *errors.Error {
	return errors.New("R006").WithSubjectf("%v", key)
}

func cyclicDependencyError(path []string) *errors.Error {
	return errors.New("R003").WithSubject(strings.Join(path, " -> "))
}

func teardownError(kind, name string, id uint64) *errors.Error {
	subject := fmt.Sprintf("%s #%d", kind, id)
	if name != "" {
		subject = fmt.Sprintf("%s %q", kind, name)
	}
	return errors.New("R004").WithSubject(subject)
}

func typeMismatchError(want reflect.Type, got any) *errors.Error {
	return errors.New("R005").WithSubjectf("want %v, got %T", want, got)
}

// describeKey renders a context key for error messages.
func describeKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprintf("%T", key)
	}
}

// raise reports err to the observer of owner and panics with it.
// Value-returning operations use it for contract violations.
func raise(owner *Owner, err error) {
	if obs := owner.observer(); obs != nil {
		obs.ErrorRaised(err)
	}
	panic(err)
}

// Catch runs fn and converts a contract-violation panic raised by this
// package (missing provider, cycles, use after teardown, ...) into an
// error. Other panics are propagated unchanged. Rendering layers wrap the
// render of a subtree with Catch and halt that subtree on error.
func Catch(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*errors.Error); ok {
			err = e
			return
		}
		panic(r)
	}()
	fn()
	return nil
}
