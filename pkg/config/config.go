// Package config provides unified configuration for the rdfweb endpoint.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (RDFWEB_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the rdfweb endpoint.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Graph         GraphConfig         `yaml:"graph"`
	Endpoint      EndpointConfig      `yaml:"endpoint"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 5000
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 0 (queries are not time limited)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
}

// GraphConfig selects the triple store and the data loaded into it.
type GraphConfig struct {
	Store string `yaml:"store"` // "memory", "pebble" or "postgres", default: "memory"

	// Files are RDF documents loaded at startup.
	Files []string `yaml:"files"`

	// Syntax forces the syntax of Files; empty means guess from the extension.
	Syntax string `yaml:"syntax"`

	// SampleData loads the sample book database when Files is empty and
	// the store holds no triples. Default: true.
	SampleData bool `yaml:"sample_data"`

	// Namespaces are extra prefix bindings for HTML rendering and queries.
	Namespaces map[string]string `yaml:"namespaces"`

	Pebble   PebbleConfig   `yaml:"pebble"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PebbleConfig holds settings for the on-disk Pebble store.
type PebbleConfig struct {
	Path   string `yaml:"path"` // default: "rdfweb.db"
	NoSync bool   `yaml:"no_sync"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// EndpointConfig holds SPARQL endpoint behavior.
type EndpointConfig struct {
	// RedactErrors replaces the stack trace in 400 responses with the
	// bare error message.
	RedactErrors bool `yaml:"redact_errors"`
}

// MCPConfig holds MCP (Model Context Protocol) server settings.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Path    string `yaml:"path"`    // default: "/mcp"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log level and debug categories. The RDFWEB_LOG_LEVEL
// and RDFWEB_DEBUG environment variables take precedence.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Graph: GraphConfig{
			Store:      "memory",
			SampleData: true,
			Pebble: PebbleConfig{
				Path: "rdfweb.db",
			},
			Postgres: PostgresConfig{
				MaxConns:       25,
				MigrateOnStart: true,
			},
		},
		MCP: MCPConfig{
			Path: "/mcp",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
