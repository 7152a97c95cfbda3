// Package sparql implements the query engine behind the endpoint: a
// parser and evaluator for SELECT and ASK queries over a graph.Graph, and
// the SPARQL results serializations.
package sparql

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/graph"
	"github.com/JervenBolleman/rdflib-web/pkg/observability"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Engine runs queries against a graph. It is safe for concurrent use as
// long as the graph is.
type Engine struct {
	graph graph.Graph
	ns    *rdf.NamespaceManager
}

// NewEngine returns an engine over g. The namespace manager supplies
// prefixes the query does not declare and shortens IRIs in HTML results.
// A nil manager gets the default bindings.
func NewEngine(g graph.Graph, ns *rdf.NamespaceManager) *Engine {
	if ns == nil {
		ns = rdf.NewNamespaceManager()
	}
	return &Engine{graph: g, ns: ns}
}

// Graph returns the graph queried by the engine.
func (e *Engine) Graph() graph.Graph { return e.graph }

// Namespaces returns the engine's namespace manager.
func (e *Engine) Namespaces() *rdf.NamespaceManager { return e.ns }

// Query parses and evaluates a query string. Parse failures and
// evaluation failures are both returned as errors.
func (e *Engine) Query(ctx context.Context, query string) (*Result, error) {
	debug.Trace(debug.SPARQL, "parsing query", "query", debug.Truncate(query, 2000))
	q, err := Parse(query, e.ns)
	if err != nil {
		return nil, errors.Wrap(err, "parsing query")
	}
	return e.Exec(ctx, q)
}

// Exec evaluates a parsed query.
func (e *Engine) Exec(ctx context.Context, q *Query) (*Result, error) {
	start := time.Now()
	defer func() {
		observability.QueryDuration.WithLabelValues(q.Form.String()).Observe(time.Since(start).Seconds())
	}()

	ev := &evaluator{ctx: ctx, graph: e.graph}
	sols, err := ev.group(q.Where, []Solution{{}})
	if err != nil {
		return nil, errors.Wrap(err, "evaluating query")
	}
	debug.Log(debug.SPARQL, "query evaluated", "form", q.Form, "solutions", len(sols))

	if q.Form == FormAsk {
		return &Result{Form: FormAsk, Boolean: len(sols) > 0, ns: e.ns}, nil
	}

	if len(q.Order) > 0 {
		sortSolutions(sols, q.Order)
	}

	rows := make([]Solution, 0, len(sols))
	seen := make(map[string]bool)
	for _, s := range sols {
		row := make(Solution, len(q.Vars))
		for _, v := range q.Vars {
			if t, ok := s[v]; ok {
				row[v] = t
			}
		}
		if q.Distinct {
			k := key(q.Vars, row)
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		rows = append(rows, row)
	}

	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			rows = rows[:0]
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit >= 0 && q.Limit < len(rows) {
		rows = rows[:q.Limit]
	}

	return &Result{Form: FormSelect, Vars: q.Vars, Rows: rows, ns: e.ns}, nil
}

func sortSolutions(sols []Solution, order []OrderCondition) {
	value := func(e Expr, s Solution) rdf.Term {
		t, err := e.eval(s)
		if err != nil {
			return rdf.Term{}
		}
		return t
	}
	sort.SliceStable(sols, func(i, j int) bool {
		for _, o := range order {
			c := orderCompare(value(o.Expr, sols[i]), value(o.Expr, sols[j]))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
