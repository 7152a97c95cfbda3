package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JervenBolleman/rdflib-web/pkg/config"
	"github.com/JervenBolleman/rdflib-web/pkg/endpoint"
	"github.com/JervenBolleman/rdflib-web/pkg/graph"
	"github.com/JervenBolleman/rdflib-web/pkg/graph/memory"
	"github.com/JervenBolleman/rdflib-web/pkg/graph/pebblestore"
	"github.com/JervenBolleman/rdflib-web/pkg/graph/postgres"
	"github.com/JervenBolleman/rdflib-web/pkg/mcpserver"
	"github.com/JervenBolleman/rdflib-web/pkg/observability"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
	"github.com/JervenBolleman/rdflib-web/pkg/sparql"
	transporthttp "github.com/JervenBolleman/rdflib-web/pkg/transport/http"
)

// app is the graph and query engine shared by the subcommands.
type app struct {
	graph  graph.Graph
	ns     *rdf.NamespaceManager
	engine *sparql.Engine
}

// openApp opens the configured store, loads the data files (or the sample
// book database) and binds namespaces for the engine.
func openApp(ctx context.Context, cfg config.GraphConfig) (*app, error) {
	g, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := loadData(ctx, g, cfg); err != nil {
		g.Close()
		return nil, err
	}

	nm := rdf.NewNamespaceManager()
	if err := graph.RegisterNamespaces(ctx, g, nm); err != nil {
		g.Close()
		return nil, err
	}
	for prefix, uri := range cfg.Namespaces {
		nm.Bind(prefix, uri, true)
	}

	n, err := g.Len(ctx)
	if err != nil {
		g.Close()
		return nil, errors.Wrap(err, "counting triples")
	}
	observability.GraphTriples.Set(float64(n))
	slog.Info("graph ready", "store", cfg.Store, "triples", n)

	return &app{graph: g, ns: nm, engine: sparql.NewEngine(g, nm)}, nil
}

func (a *app) Close() error { return a.graph.Close() }

// openStore opens the triple store selected by cfg.Store.
func openStore(ctx context.Context, cfg config.GraphConfig) (graph.Graph, error) {
	switch cfg.Store {
	case "pebble":
		s, err := pebblestore.Open(pebblestore.Config{Path: cfg.Pebble.Path, NoSync: cfg.Pebble.NoSync})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, errors.Newf("unknown graph store %q", cfg.Store)
	}
}

// loadData adds cfg.Files to g. Without files, an empty store is seeded
// with the sample book database unless SampleData is off.
func loadData(ctx context.Context, g graph.Graph, cfg config.GraphConfig) error {
	var syntax rdf.Syntax
	if cfg.Syntax != "" {
		s, err := rdf.ParseSyntax(cfg.Syntax)
		if err != nil {
			return err
		}
		syntax = s
	}

	for _, path := range cfg.Files {
		n, err := graph.Load(ctx, g, path, syntax)
		if err != nil {
			return err
		}
		slog.Info("data file loaded", "path", path, "triples", n)
	}
	if len(cfg.Files) > 0 || !cfg.SampleData {
		return nil
	}

	n, err := g.Len(ctx)
	if err != nil {
		return errors.Wrap(err, "counting triples")
	}
	if n > 0 {
		return nil
	}
	return graph.BookDB(ctx, g)
}

// adapter builds the HTTP adapter with the metrics and MCP routes
// enabled in cfg.
func (a *app) adapter(cfg *config.Config) (*transporthttp.Adapter, error) {
	renderer, err := endpoint.NewRenderer()
	if err != nil {
		return nil, err
	}
	engine := endpoint.SPARQL(a.engine)

	ad := transporthttp.NewAdapter(engine, endpoint.NewResponder(renderer), a.graph, transporthttp.Config{
		MaxBodySize:  cfg.Server.MaxBodySize,
		RedactErrors: cfg.Endpoint.RedactErrors,
		Logger:       slog.Default(),
	})

	if cfg.Observability.Metrics.Enabled {
		ad.Mount(http.MethodGet+" "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}
	if cfg.MCP.Enabled {
		ad.Mount(cfg.MCP.Path, mcpserver.Handler(mcpserver.New(engine, a.ns)))
		slog.Info("mcp endpoint enabled", "path", cfg.MCP.Path)
	}
	return ad, nil
}
