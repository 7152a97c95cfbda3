package api

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrMissingQuery is returned when a request carries no query string.
var ErrMissingQuery = errors.New("missing required parameter: query")

// QueryExecutionError reports that the query engine could not parse or
// execute a query. Parse and evaluation failures are not distinguished.
type QueryExecutionError struct {
	Query string
	cause error
}

// NewQueryExecutionError wraps cause as a QueryExecutionError for query q.
// The returned error carries the caller's stack.
func NewQueryExecutionError(q string, cause error) error {
	return errors.WithStackDepth(&QueryExecutionError{Query: q, cause: cause}, 1)
}

// Error implements the error interface.
func (e *QueryExecutionError) Error() string {
	if e.cause == nil {
		return "query execution failed"
	}
	return "query execution failed: " + e.cause.Error()
}

// Unwrap returns the underlying engine error.
func (e *QueryExecutionError) Unwrap() error { return e.cause }

// Format prints the error chain; %+v includes stack traces.
func (e *QueryExecutionError) Format(s fmt.State, verb rune) { errors.FormatError(e, s, verb) }

// FormatError implements errors.Formatter.
func (e *QueryExecutionError) FormatError(p errors.Printer) error {
	p.Print("query execution failed")
	if p.Detail() {
		p.Printf("query: %s", e.Query)
	}
	return e.cause
}

// UnsupportedFormatError reports a format key missing from the format table.
type UnsupportedFormatError struct {
	Format string
}

// NewUnsupportedFormatError returns an UnsupportedFormatError for key,
// carrying the caller's stack.
func NewUnsupportedFormatError(key string) error {
	return errors.WithStackDepth(&UnsupportedFormatError{Format: key}, 1)
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported result format %q (want one of xml, html, json)", e.Format)
}

// IsQueryExecution reports whether err wraps a QueryExecutionError.
func IsQueryExecution(err error) bool {
	var qe *QueryExecutionError
	return errors.As(err, &qe)
}

// IsUnsupportedFormat reports whether err wraps an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var ue *UnsupportedFormatError
	return errors.As(err, &ue)
}

// ErrorKind returns a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnsupportedFormat(err):
		return "unsupported_format"
	case IsQueryExecution(err):
		return "query_execution"
	case errors.Is(err, ErrMissingQuery):
		return "missing_query"
	default:
		return "internal"
	}
}
