// Package api defines the protocol-level types shared by the SPARQL
// endpoint: the result format enumeration with its fixed MIME table and
// the error taxonomy surfaced at the HTTP boundary.
//
// The package performs no I/O. Errors are built on
// github.com/cockroachdb/errors so that every error carries the stack of
// the place it was created; the HTTP layer prints that stack into the
// body of 400 responses.
//
// Core types:
//   - [Format]: logical result format (xml, html, json)
//   - [QueryExecutionError]: the query engine could not parse or run a query
//   - [UnsupportedFormatError]: an output key outside the format table
package api
