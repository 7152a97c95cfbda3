package transport

import (
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Recovery returns middleware that catches panics in the handler and
// answers them like any other failure: 400 with the error trace. The
// server continues to accept new requests after a panic is recovered.
func Recovery(redact bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					err := errors.Newf("panic: %v", v)
					slog.Error("handler panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"panic", v,
					)
					WriteTrace(w, err, redact)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
