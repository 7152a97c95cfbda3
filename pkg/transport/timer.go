package transport

import (
	"context"
	"net/http"
	"time"
)

type startTimeKey struct{}

// StartTimer returns middleware that records the time handling started
// (stage 2).
func StartTimer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithStartTime(r.Context(), time.Now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithStartTime returns a context carrying the request start time.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

// StartTimeFromContext returns the start time recorded by StartTimer.
func StartTimeFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startTimeKey{}).(time.Time)
	return t, ok
}
