// Package errors provides structured, actionable errors for the reactive
// store and its tooling.
//
// Every error has a registered code that maps to a category, a short
// message, a longer explanation and, where one exists, a suggestion:
//
//   - R0xx: reactive core (missing provider, duplicate key, cycles,
//     use after teardown, type mismatch)
//   - C1xx: configuration files
//   - S2xx: snapshots and snapshot stores
//   - I3xx: the HTTP inspector
//   - E4xx: command line usage
//
// # Usage
//
//	err := errors.New("R001").
//	    WithSubject("theme").
//	    WithSuggestion("Provide the theme on the root scope")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Missing context provider
//	//
//	//   theme
//	//
//	//   No scope between the current one and the root provides a value
//	//   for this context key.
//	//
//	//   Hint: Provide the theme on the root scope
//	//
//	//   Learn more: https://signals.vango.dev/errors/R001
//
// Two errors with the same code match under errors.Is, so callers can
// compare against a template:
//
//	if errors.Is(err, errors.New("R001")) { ... }
package errors
