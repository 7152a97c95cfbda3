package endpoint

import (
	"context"
	"html/template"

	"github.com/cockroachdb/errors"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/negotiate"
)

// ErrNoEngine is returned when a request context carries no engine.
var ErrNoEngine = errors.New("no query engine bound to request")

// Responder turns a negotiated query request into an Envelope.
type Responder struct {
	renderer *Renderer
}

// NewResponder returns a Responder that renders HTML through r.
func NewResponder(r *Renderer) *Responder {
	return &Responder{renderer: r}
}

// Respond runs query on the engine bound to ctx and serializes the result
// as res.Format under Content-Type res.MIMEType. Query and serialization
// failures are both returned as a QueryExecutionError.
func (r *Responder) Respond(ctx context.Context, res negotiate.Resolved, query string) (*Envelope, error) {
	if query == "" {
		return nil, errors.WithStack(api.ErrMissingQuery)
	}
	engine := EngineFromContext(ctx)
	if engine == nil {
		return nil, errors.WithStack(ErrNoEngine)
	}

	result, err := engine.Query(ctx, query)
	if err != nil {
		return nil, api.NewQueryExecutionError(query, err)
	}
	body, err := result.Serialize(res.Format)
	if err != nil {
		return nil, api.NewQueryExecutionError(query, err)
	}
	debug.Log(debug.Endpoint, "query serialized", "format", res.Format, "bytes", len(body))

	if res.Format == api.FormatHTML {
		body, err = r.renderer.Render(ResultsTemplate, map[string]any{
			"Results": template.HTML(body),
			"Q":       query,
		})
		if err != nil {
			return nil, err
		}
	}
	return NewEnvelope(body, res.MIMEType), nil
}

// Index renders the query form page.
func (r *Responder) Index() (*Envelope, error) {
	body, err := r.renderer.Render(IndexTemplate, nil)
	if err != nil {
		return nil, err
	}
	return NewEnvelope(body, api.MIMEHTML), nil
}
