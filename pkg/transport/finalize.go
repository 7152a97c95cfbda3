package transport

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/endpoint"
)

// Finalize returns middleware that post-processes every response
// (stage 4). The response is buffered; when it is a 200 with an HTML
// Content-Type, each __EXECUTION_TIME__ token in the body is replaced by
// the seconds elapsed since StartTimer, with three decimals, and
// Content-Length is set to the new body length. Other responses pass
// through unchanged. Finalize never fails.
//
// Finalize must run inside StartTimer. Without a recorded start time the
// time Finalize was entered is used.
func Finalize() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start, ok := StartTimeFromContext(r.Context())
			if !ok {
				start = time.Now()
			}

			buf := &bufferedWriter{header: w.Header()}
			next.ServeHTTP(buf, r)

			status := buf.status
			if status == 0 {
				status = http.StatusOK
			}
			body := buf.body.Bytes()

			if status == http.StatusOK && isHTML(w.Header().Get("Content-Type")) {
				elapsed := strconv.FormatFloat(time.Since(start).Seconds(), 'f', 3, 64)
				body = bytes.ReplaceAll(body, []byte(endpoint.ExecutionTimeToken), []byte(elapsed))
				w.Header().Set("Content-Length", strconv.Itoa(len(body)))
				debug.Log(debug.Transport, "response finalized", "elapsed", elapsed, "bytes", len(body))
			}

			w.WriteHeader(status)
			if _, err := w.Write(body); err != nil {
				debug.Log(debug.Transport, "writing response failed", "error", err)
			}
		})
	}
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html")
}

// bufferedWriter collects a response so it can be rewritten before it
// is sent. Headers are shared with the real writer.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// discard drops the status and body written so far. Nothing has reached
// the client yet, so an error response can still replace them.
func (b *bufferedWriter) discard() {
	b.status = 0
	b.body.Reset()
}
