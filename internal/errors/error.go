package errors

import (
	"fmt"
	"strings"
)

// Category groups error codes by the part of the system that raises them.
type Category string

const (
	CategoryReactive   Category = "reactive"
	CategoryContext    Category = "context"
	CategoryCollection Category = "collection"
	CategoryConfig     Category = "config"
	CategorySnapshot   Category = "snapshot"
	CategoryInspector  Category = "inspector"
	CategoryCLI        Category = "cli"
)

// Error is a coded error. The code selects a registered template that
// supplies category, message, detail, suggestion and documentation link;
// the instance adds a subject and an optional cause.
//
// Two errors match under errors.Is when their codes are equal, so a bare
// New("R001") works as a sentinel for every R001 raised with a subject.
type Error struct {
	Code       string
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string

	// Subject names what the error is about: a context key, a list key,
	// a signal name or a file path.
	Subject string

	// Wrapped is the cause, if any.
	Wrapped error
}

// Error renders "CODE: message (subject): cause".
func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Subject != "" {
		fmt.Fprintf(&b, " (%s)", e.Subject)
	}
	if e.Wrapped != nil {
		if cause := e.Wrapped.Error(); cause != e.Message {
			b.WriteString(": ")
			b.WriteString(cause)
		}
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Wrapped }

// Is reports whether target is an *Error with the same non-empty code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSubject sets the subject and returns e.
func (e *Error) WithSubject(subject string) *Error {
	e.Subject = subject
	return e
}

// WithSubjectf formats the subject and returns e.
func (e *Error) WithSubjectf(format string, args ...any) *Error {
	return e.WithSubject(fmt.Sprintf(format, args...))
}

// WithSuggestion replaces the template suggestion and returns e.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the template detail and returns e.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap records err as the cause and returns e.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New returns a fresh error for a registered code. Unregistered codes
// produce an "Unknown error" carrying the code.
func New(code string) *Error {
	t, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	e := &Error{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Detail:     t.Detail,
		Suggestion: t.Suggestion,
		DocURL:     t.DocURL,
	}
	if e.DocURL == "" {
		e.DocURL = docBase + code
	}
	return e
}

// Newf returns an uncoded error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError returns err itself when it already is an *Error, and
// otherwise wraps it in New(code). A nil err stays nil.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
