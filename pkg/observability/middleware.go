package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MetricsMiddleware wraps an HTTP handler to record request metrics.
//
// It captures:
//   - rdfweb_requests_total (counter): method, status class and format labels
//   - rdfweb_request_duration_seconds (histogram): method and format labels
//
// The format label is derived from the response Content-Type, so a
// force-accept override is reported as "other".
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		statusStr := strconv.Itoa(sw.status/100) + "xx"
		format := FormatLabel(sw.Header().Get("Content-Type"))

		RequestsTotal.WithLabelValues(r.Method, statusStr, format).Inc()
		RequestDuration.WithLabelValues(r.Method, format).Observe(duration)
	})
}

// FormatLabel classifies a Content-Type value as xml, json, html or other.
func FormatLabel(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	switch ct = strings.TrimSpace(ct); {
	case ct == "text/html":
		return "html"
	case strings.HasSuffix(ct, "+xml") || strings.HasSuffix(ct, "/xml"):
		return "xml"
	case strings.HasSuffix(ct, "+json") || strings.HasSuffix(ct, "/json"):
		return "json"
	default:
		return "other"
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader captures the status code and delegates to the underlying writer.
func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write delegates to the underlying writer and marks the status as written.
func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush delegates to the underlying writer if it implements http.Flusher.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter, enabling http.ResponseController
// and similar utilities to access the original writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
