// Package transport provides the HTTP middleware stages of the SPARQL
// endpoint and the error surface shared by its handlers.
//
// # Request stages
//
// Every query request passes through four stages, in this order:
//
//  1. BindEngine puts the query engine into the request context.
//  2. StartTimer records when handling started.
//  3. The route handler builds the response.
//  4. Finalize post-processes the buffered response: in a 200 HTML page
//     the __EXECUTION_TIME__ token becomes the elapsed seconds and
//     Content-Length is recomputed.
//
// Finalize sits outside the handler and Recovery, so it sees every
// response, including the 400 written for a recovered panic.
//
// # Errors
//
// Any failure while answering a query is reported as 400 Bad Request
// with the error and its stack trace in a <pre> block (WriteTrace). The
// trace exposes internals; set redact to send only the error message.
//
// # Cross-cutting middleware
//
// RequestID assigns X-Request-ID (a UUID when the client sent none),
// Logging emits one log/slog line per request, and Recovery converts
// panics into the 400 error surface.
package transport
