package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JervenBolleman/rdflib-web/pkg/config"
	"github.com/JervenBolleman/rdflib-web/pkg/graph/memory"
)

const peopleNT = `<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .
<http://example.org/bob> <http://xmlns.com/foaf/0.1/name> "Bob" .
`

// isolate keeps the host's config files and environment out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvConfig, "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommand_SampleData(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "query", "--format", "json", "SELECT ?t WHERE { book:book7 dc:title ?t }")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, "Harry Potter and the Deathly Hallows") {
		t.Errorf("output = %s", out)
	}
}

func TestQueryCommand_Files(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "people.nt", peopleNT)

	out, err := execute(t, "", "query",
		"PREFIX foaf: <http://xmlns.com/foaf/0.1/> SELECT ?n WHERE { ?p foaf:name ?n } ORDER BY ?n",
		data,
	)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, "<literal>Alice</literal>") || !strings.Contains(out, "<literal>Bob</literal>") {
		t.Errorf("output = %s", out)
	}
	if strings.Contains(out, "Harry Potter") {
		t.Error("sample data should not be loaded when files are given")
	}
}

func TestQueryCommand_Stdin(t *testing.T) {
	isolate(t)
	out, err := execute(t, "ASK { ?s ?p ?o }", "query", "-f", "json", "-")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, `"boolean":true`) {
		t.Errorf("output = %s", out)
	}
}

func TestQueryCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"query", "--format", "csv", "ASK {}"}, "unsupported result format"},
		{"bad query", []string{"query", "INVALID SYNTAX !!!"}, "query execution failed"},
		{"missing file", []string{"query", "ASK {}", "/nonexistent/data.ttl"}, "data.ttl"},
		{"bad store", []string{"query", "--store", "redis", "ASK {}"}, "graph.store must be"},
		{"no query", []string{"query"}, "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := execute(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestQueryCommand_PebbleStore(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, dir, "people.nt", peopleNT)
	dbPath := filepath.Join(dir, "db")
	t.Setenv("RDFWEB_PEBBLE_PATH", dbPath)

	// Load once, then query the persisted store without files.
	if _, err := execute(t, "", "query", "--store", "pebble", "ASK {}", data); err != nil {
		t.Fatalf("loading into pebble: %v", err)
	}
	out, err := execute(t, "", "query", "--store", "pebble", "-f", "json",
		"SELECT ?n WHERE { <http://example.org/bob> <http://xmlns.com/foaf/0.1/name> ?n }")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, `"Bob"`) {
		t.Errorf("output = %s", out)
	}
	if strings.Contains(out, "Harry Potter") {
		t.Error("sample data should not be added to a non-empty store")
	}
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.ttl", "@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n<http://example.org/alice> foaf:name \"Alice\" .\n")

	tests := []struct {
		name string
		cfg  config.GraphConfig
		want int
	}{
		{"sample data", config.GraphConfig{SampleData: true}, 27},
		{"sample data off", config.GraphConfig{SampleData: false}, 0},
		{"files", config.GraphConfig{Files: []string{data}, SampleData: true}, 1},
		{"forced syntax", config.GraphConfig{Files: []string{data}, Syntax: "turtle"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			g := memory.New()
			if err := loadData(ctx, g, tt.cfg); err != nil {
				t.Fatalf("loadData: %v", err)
			}
			n, _ := g.Len(ctx)
			if n != tt.want {
				t.Errorf("triples = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestOpenApp_ConfigNamespaces(t *testing.T) {
	ctx := context.Background()
	a, err := openApp(ctx, config.GraphConfig{
		Store:      "memory",
		SampleData: true,
		Namespaces: map[string]string{"ex": "http://example.org/"},
	})
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer a.Close()

	if uri, ok := a.ns.Expand("ex"); !ok || uri != "http://example.org/" {
		t.Errorf("ex = %q, %v", uri, ok)
	}
	if _, ok := a.ns.Expand("dc"); !ok {
		t.Error("graph namespace dc not registered")
	}
}

func TestAdapterRoutes(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.MCP.Enabled = true

	a, err := openApp(ctx, cfg.Graph)
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer a.Close()

	ad, err := a.adapter(&cfg)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	h := ad.Handler()

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantBody string
	}{
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "rdfweb_graph_triples 27"},
		{"healthz", http.MethodGet, "/healthz", http.StatusOK, `"ok"`},
		{"sparql", http.MethodGet, "/sparql?output=json&query=ASK%7B%7D", http.StatusOK, `"boolean":true`},
		{"mcp rejects plain get", http.MethodGet, "/mcp", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if tt.wantCode == 0 {
				if rec.Code == http.StatusNotFound {
					t.Error("mcp route not mounted")
				}
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
		})
	}
}
