// Package endpoint builds the responses of the SPARQL endpoint: it runs a
// query on the engine bound to the request, serializes the result in the
// negotiated format, and renders the HTML pages.
package endpoint

import (
	"context"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/sparql"
)

// Result is a query result that can serialize itself.
type Result interface {
	Serialize(api.Format) ([]byte, error)
}

// Engine executes query strings.
type Engine interface {
	Query(ctx context.Context, query string) (Result, error)
}

// SPARQL adapts a *sparql.Engine to Engine.
func SPARQL(e *sparql.Engine) Engine { return sparqlEngine{e} }

type sparqlEngine struct{ e *sparql.Engine }

func (s sparqlEngine) Query(ctx context.Context, query string) (Result, error) {
	r, err := s.e.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type engineKey struct{}

// ContextWithEngine returns a context carrying the engine that requests
// handled under it query.
func ContextWithEngine(ctx context.Context, e Engine) context.Context {
	return context.WithValue(ctx, engineKey{}, e)
}

// EngineFromContext returns the engine bound to ctx, or nil.
func EngineFromContext(ctx context.Context) Engine {
	e, _ := ctx.Value(engineKey{}).(Engine)
	return e
}
