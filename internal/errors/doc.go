// Package errors provides structured, actionable error messages for the
// development server.
//
// Errors carry a code, a category, and an optional suggestion so that
// startup failures tell the operator what to do next instead of dumping a
// bare string. The package also defines the deterministic error-to-wire
// mapping used when an error is pushed to connected browsers.
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: construction-time configuration errors (fatal, never retried)
//   - resolve: request-path resolution failures (boundary violations)
//   - bind: socket bind and listen failures (port collisions, exhaustion)
//   - protocol: reload-channel wire errors
//
// # Usage
//
//	err := errors.New(errors.CodePortExhausted).
//	    WithDetailf("tried ports %d through %d", start, start+limit).
//	    WithSuggestion("pass --port to pick a different starting port")
package errors
