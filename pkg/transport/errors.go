package transport

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
)

// TraceContentType is the Content-Type of error trace responses.
const TraceContentType = "text/html; charset=utf-8"

// TraceBody formats err as a preformatted HTML fragment. Unless redact is
// set, the fragment holds the full error chain with stack traces.
func TraceBody(err error, redact bool) []byte {
	text := err.Error()
	if !redact {
		text = fmt.Sprintf("%+v", err)
	}
	return []byte("<pre>" + html.EscapeString(text) + "</pre>")
}

// WriteTrace answers a failed request: status 400 with the error trace as
// an HTML <pre> block. Any Content-Type set by the failed handler is
// replaced. Inside Finalize, whatever the handler already wrote is
// discarded first.
func WriteTrace(w http.ResponseWriter, err error, redact bool) {
	if b, ok := w.(*bufferedWriter); ok {
		b.discard()
	}
	body := TraceBody(err, redact)
	h := w.Header()
	h.Set("Content-Type", TraceContentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Del("Content-Encoding")
	w.WriteHeader(http.StatusBadRequest)
	w.Write(body)
}
