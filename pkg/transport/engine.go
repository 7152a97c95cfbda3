package transport

import (
	"net/http"

	"github.com/JervenBolleman/rdflib-web/pkg/endpoint"
)

// BindEngine returns middleware that binds e to every request context
// (stage 1). Handlers read it back with endpoint.EngineFromContext.
func BindEngine(e endpoint.Engine) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(endpoint.ContextWithEngine(r.Context(), e)))
		})
	}
}
