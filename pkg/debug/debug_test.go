package debug

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

// withDebug restores the enabled categories and default logger after t.
func withDebug(t *testing.T) {
	t.Helper()
	set := enabled.Load()
	logger := slog.Default()
	t.Cleanup(func() {
		enabled.Store(set)
		slog.SetDefault(logger)
	})
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Category
		wantErr string
	}{
		{"empty", "", nil, ""},
		{"single", "sparql", []Category{SPARQL}, ""},
		{"multiple", "sparql,graph", []Category{SPARQL, Graph}, ""},
		{"all", "all", []Category{All}, ""},
		{"spaces and case", " SPARQL , Transport ", []Category{SPARQL, Transport}, ""},
		{"empty segments", "mcp,,config", []Category{MCP, Config}, ""},
		{"duplicates", "graph,GRAPH", []Category{Graph}, ""},
		{"unknown kept apart", "endpoint,cache", []Category{Endpoint}, `"cache"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategories(tt.input)
			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("error = %v, want it to contain %s", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseCategories(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"TRACE", LevelTrace, false},
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"DEBUG-2", slog.LevelDebug - 2, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{Graph, SPARQL, Endpoint, Transport, Config, MCP, All} {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Category("cache").Valid() {
		t.Error("unknown category should not be valid")
	}
}

func TestEnabled(t *testing.T) {
	withDebug(t)

	enable([]Category{SPARQL, Graph})
	if !Enabled(SPARQL) || !Enabled(Graph) {
		t.Error("sparql and graph should be enabled")
	}
	if Enabled(MCP) {
		t.Error("mcp should not be enabled")
	}

	enable([]Category{All})
	for _, c := range known {
		if !Enabled(c) {
			t.Errorf("%q should be enabled via all", c)
		}
	}

	enable(nil)
	if Enabled(SPARQL) {
		t.Error("nothing should be enabled")
	}
}

func TestLogHonoursCategoryAndLevel(t *testing.T) {
	withDebug(t)

	var buf bytes.Buffer
	Apply(Settings{Level: slog.LevelDebug, Categories: []Category{Transport}}, &buf)

	Log(Transport, "response finalized", "bytes", 12)
	Log(Graph, "loaded file")
	Trace(Transport, "too verbose")

	out := buf.String()
	if !strings.Contains(out, "response finalized") || !strings.Contains(out, "debug=transport") {
		t.Errorf("expected transport record, got:\n%s", out)
	}
	if strings.Contains(out, "loaded file") {
		t.Error("disabled category should be dropped")
	}
	if strings.Contains(out, "too verbose") {
		t.Error("trace record should be dropped at DEBUG")
	}
}

func TestTraceVisibleAtTraceLevel(t *testing.T) {
	withDebug(t)

	var buf bytes.Buffer
	Apply(Settings{Level: LevelTrace, Categories: []Category{All}}, &buf)
	Trace(SPARQL, "parsing query", "query", "ASK {}")

	if !strings.Contains(buf.String(), "parsing query") {
		t.Errorf("expected trace record, got:\n%s", buf.String())
	}
}

func TestConfigure_EnvOverridesConfig(t *testing.T) {
	withDebug(t)

	t.Setenv(EnvCategories, "transport")
	t.Setenv(EnvLevel, "")
	s, err := Configure("sparql", "DEBUG")
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if !slices.Equal(s.Categories, []Category{Transport}) {
		t.Errorf("Categories = %v, want [transport]", s.Categories)
	}
	if s.Level != slog.LevelDebug {
		t.Errorf("Level = %v, want DEBUG from config", s.Level)
	}
	if !Enabled(Transport) || Enabled(SPARQL) {
		t.Error("environment categories should replace config categories")
	}
}

func TestConfigure_RejectsUnknownEnvValues(t *testing.T) {
	withDebug(t)

	t.Setenv(EnvCategories, "sparql,bogus")
	t.Setenv(EnvLevel, "LOUD")
	_, err := Configure("", "")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"bogus", "LOUD"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err.Error(), want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"this is a long string", 10, "this is a ..."},
		{"héllo", 2, "h..."},
		{"héllo", 3, "hé..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
