package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/JervenBolleman/rdflib-web/pkg/debug"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "RDFWEB_CONFIG"

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, RDFWEB_CONFIG env, ./config.yaml, /etc/rdfweb/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, errors.Wrapf(err, "loading config file %s", filePath)
		}
		debug.Log(debug.Config, "config file loaded", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, errors.Wrap(err, "applying environment overrides")
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, errors.Wrap(err, "resolving file references")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. RDFWEB_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/rdfweb/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/rdfweb/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps RDFWEB_* environment variables to config fields.
// Malformed numbers and booleans are ignored, as in the YAML defaults;
// malformed RDFWEB_NAMESPACES JSON is an error.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("RDFWEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RDFWEB_STORE"); v != "" {
		cfg.Graph.Store = v
	}
	if v := os.Getenv("RDFWEB_DATA"); v != "" {
		cfg.Graph.Files = splitList(v)
	}
	if v := os.Getenv("RDFWEB_SYNTAX"); v != "" {
		cfg.Graph.Syntax = v
	}
	if v := os.Getenv("RDFWEB_PEBBLE_PATH"); v != "" {
		cfg.Graph.Pebble.Path = v
	}
	if v := os.Getenv("RDFWEB_POSTGRES_DSN"); v != "" {
		cfg.Graph.Postgres.DSN = v
	}
	setBool("RDFWEB_SAMPLE_DATA", &cfg.Graph.SampleData)
	setBool("RDFWEB_REDACT_ERRORS", &cfg.Endpoint.RedactErrors)
	setBool("RDFWEB_METRICS", &cfg.Observability.Metrics.Enabled)
	setBool("RDFWEB_MCP", &cfg.MCP.Enabled)

	// RDFWEB_NAMESPACES: JSON object of prefix to namespace URI.
	if v := os.Getenv("RDFWEB_NAMESPACES"); v != "" {
		ns, err := parseNamespacesJSON(v)
		if err != nil {
			return err
		}
		if cfg.Graph.Namespaces == nil {
			cfg.Graph.Namespaces = make(map[string]string, len(ns))
		}
		for prefix, uri := range ns {
			cfg.Graph.Namespaces[prefix] = uri
		}
	}
	return nil
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseNamespacesJSON parses a JSON object mapping prefixes to URIs.
func parseNamespacesJSON(jsonStr string) (map[string]string, error) {
	var ns map[string]string
	if err := json.Unmarshal([]byte(jsonStr), &ns); err != nil {
		return nil, errors.Wrap(err, "parsing RDFWEB_NAMESPACES")
	}
	return ns, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// If the value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// graph.postgres.dsn_file -> graph.postgres.dsn
	if cfg.Graph.Postgres.DSNFile != "" && cfg.Graph.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Graph.Postgres.DSNFile)
		if err != nil {
			return errors.Wrap(err, "graph.postgres.dsn_file")
		}
		cfg.Graph.Postgres.DSN = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
