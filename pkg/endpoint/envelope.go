package endpoint

import (
	"net/http"
	"strconv"
)

// Envelope is a complete response: body, headers and status.
type Envelope struct {
	Body       []byte
	Header     http.Header
	StatusCode int
}

// NewEnvelope returns a 200 envelope with the given Content-Type.
func NewEnvelope(body []byte, contentType string) *Envelope {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	return &Envelope{Body: body, Header: h, StatusCode: http.StatusOK}
}

// WriteTo sends the envelope. Content-Length always matches the body.
func (e *Envelope) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range e.Header {
		dst[k] = v
	}
	dst.Set("Content-Length", strconv.Itoa(len(e.Body)))
	w.WriteHeader(e.StatusCode)
	_, err := w.Write(e.Body)
	return err
}
