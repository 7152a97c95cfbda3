package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Graph.Store {
	case "memory":
	case "pebble":
		if c.Graph.Pebble.Path == "" {
			errs = append(errs, fmt.Errorf("graph.pebble.path is required when graph.store is \"pebble\""))
		}
	case "postgres":
		if c.Graph.Postgres.DSN == "" && c.Graph.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("graph.postgres.dsn or graph.postgres.dsn_file is required when graph.store is \"postgres\""))
		}
	default:
		errs = append(errs, fmt.Errorf("graph.store must be \"memory\", \"pebble\" or \"postgres\", got %q", c.Graph.Store))
	}

	if c.Graph.Syntax != "" {
		if _, err := rdf.ParseSyntax(c.Graph.Syntax); err != nil {
			errs = append(errs, fmt.Errorf("graph.syntax: %v", err))
		}
	}
	for prefix, uri := range c.Graph.Namespaces {
		if uri == "" {
			errs = append(errs, fmt.Errorf("graph.namespaces.%s: namespace URI is empty", prefix))
		}
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}
	if c.MCP.Enabled {
		if !strings.HasPrefix(c.MCP.Path, "/") {
			errs = append(errs, fmt.Errorf("mcp.path must start with \"/\", got %q", c.MCP.Path))
		}
		if reserved(c.MCP.Path) || (c.Observability.Metrics.Enabled && c.MCP.Path == c.Observability.Metrics.Path) {
			errs = append(errs, fmt.Errorf("mcp.path %q conflicts with another route", c.MCP.Path))
		}
	}

	if _, err := debug.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %v", err))
	}
	if _, err := debug.ParseCategories(c.Logging.Debug); err != nil {
		errs = append(errs, fmt.Errorf("logging.debug: %v", err))
	}

	return errors.Join(errs...)
}

// reserved reports whether path is served by the endpoint itself.
func reserved(path string) bool {
	switch path {
	case "/", "/sparql", "/healthz":
		return true
	}
	return false
}
