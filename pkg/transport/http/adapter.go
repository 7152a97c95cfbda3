package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/endpoint"
	"github.com/JervenBolleman/rdflib-web/pkg/negotiate"
	"github.com/JervenBolleman/rdflib-web/pkg/observability"
	"github.com/JervenBolleman/rdflib-web/pkg/transport"
)

// HealthChecker reports whether the backing store is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Adapter serves the SPARQL endpoint over HTTP.
//
// Query routes (GET /, GET and POST /sparql) run through the request
// stages: BindEngine, StartTimer, Finalize and Recovery, in that order.
// Every route, including those added with Mount, is wrapped by
// RequestID, the metrics middleware and Logging.
type Adapter struct {
	responder *endpoint.Responder
	health    HealthChecker
	mux       *http.ServeMux
	config    Config
	logger    *slog.Logger
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize  int64
	RedactErrors bool
	Logger       *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MB
	}
}

// NewAdapter creates an HTTP adapter answering queries with engine.
// health may be nil, in which case /healthz always reports ok.
func NewAdapter(engine endpoint.Engine, responder *endpoint.Responder, health HealthChecker, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		responder: responder,
		health:    health,
		mux:       http.NewServeMux(),
		config:    cfg,
		logger:    logger,
	}

	stages := transport.Chain(
		transport.BindEngine(engine),
		transport.StartTimer(),
		transport.Finalize(),
		transport.Recovery(cfg.RedactErrors),
	)

	a.mux.Handle("GET /{$}", stages(http.HandlerFunc(a.handleIndex)))
	a.mux.Handle("GET /sparql", stages(http.HandlerFunc(a.handleQuery)))
	a.mux.Handle("POST /sparql", stages(http.HandlerFunc(a.handleQuery)))
	a.mux.HandleFunc("GET /healthz", a.handleHealth)

	return a
}

// Mount registers an additional handler, such as the metrics or MCP
// endpoint. The request stages are not applied to it.
func (a *Adapter) Mount(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return transport.Chain(
		transport.RequestID(),
		observability.MetricsMiddleware,
		transport.Logging(a.logger),
	)(a.mux)
}

// handleQuery handles GET and POST /sparql.
func (a *Adapter) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	signals, err := negotiate.SignalsFromRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	resolved, err := negotiate.Resolve(signals)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	debug.Log(debug.Transport, "format negotiated",
		"accept", signals.Accept,
		"format", resolved.Format,
		"mime", resolved.MIMEType,
	)

	env, err := a.responder.Respond(r.Context(), resolved, signals.Query)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.send(w, r, env)
}

// handleIndex handles GET /.
func (a *Adapter) handleIndex(w http.ResponseWriter, r *http.Request) {
	env, err := a.responder.Index()
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.send(w, r, env)
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if a.health != nil {
		if err := a.health.HealthCheck(r.Context()); err != nil {
			a.logger.Warn("health check failed", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", api.MIMEJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		a.logWriteError(r, err)
	}
}

// send writes env to the client. By then the status line is committed,
// so a failure can only be logged.
func (a *Adapter) send(w http.ResponseWriter, r *http.Request, env *endpoint.Envelope) {
	if err := env.WriteTo(w); err != nil {
		a.logWriteError(r, err)
	}
}

func (a *Adapter) logWriteError(r *http.Request, err error) {
	a.logger.LogAttrs(r.Context(), slog.LevelDebug, "writing response failed",
		slog.String("request_id", transport.RequestIDFromContext(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}

// writeError answers a failed query request with the 400 error trace.
func (a *Adapter) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := api.ErrorKind(err)
	observability.QueryErrorsTotal.WithLabelValues(kind).Inc()
	a.logger.LogAttrs(r.Context(), slog.LevelWarn, "query failed",
		slog.String("request_id", transport.RequestIDFromContext(r.Context())),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
	transport.WriteTrace(w, err, a.config.RedactErrors)
}
