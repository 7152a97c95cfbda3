// Package debug gates verbose diagnostics of the endpoint by subsystem.
//
// A Category names a subsystem (graph loading, query evaluation, response
// rendering and so on). Messages logged under a category are dropped
// unless that category is enabled. The slog level decides how much of
// what remains is printed; TRACE adds full query texts.
//
//	debug.Log(debug.SPARQL, "query evaluated", "form", q.Form, "solutions", n)
//
// Settings come from the logging section of the config file, overridden
// by RDFWEB_DEBUG and RDFWEB_LOG_LEVEL.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Environment variables consulted by Configure.
const (
	EnvCategories = "RDFWEB_DEBUG"
	EnvLevel      = "RDFWEB_LOG_LEVEL"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Category identifies a subsystem whose debug output can be switched on.
type Category string

const (
	Graph     Category = "graph"
	SPARQL    Category = "sparql"
	Endpoint  Category = "endpoint"
	Transport Category = "transport"
	Config    Category = "config"
	MCP       Category = "mcp"

	// All enables every category.
	All Category = "all"
)

var known = []Category{Graph, SPARQL, Endpoint, Transport, Config, MCP}

// Valid reports whether c is a known category or All.
func (c Category) Valid() bool {
	return c == All || slices.Contains(known, c)
}

// Settings is a resolved debug configuration.
type Settings struct {
	Level      slog.Level
	Categories []Category
}

// ParseSettings validates a comma-separated category list and a level
// name. Unknown categories and levels are errors.
func ParseSettings(categories, level string) (Settings, error) {
	cats, catErr := ParseCategories(categories)
	lvl, lvlErr := ParseLevel(level)
	return Settings{Level: lvl, Categories: cats}, errors.Join(catErr, lvlErr)
}

// ParseCategories splits a comma-separated list. Names are
// case-insensitive and empty entries are skipped. Unknown names are
// reported in the error; the valid ones are still returned.
func ParseCategories(s string) ([]Category, error) {
	var (
		cats    []Category
		unknown []string
	)
	for _, name := range strings.Split(s, ",") {
		c := Category(strings.ToLower(strings.TrimSpace(name)))
		switch {
		case c == "":
		case !c.Valid():
			unknown = append(unknown, string(c))
		case !slices.Contains(cats, c):
			cats = append(cats, c)
		}
	}
	if len(unknown) > 0 {
		return cats, errors.Newf("unknown debug categories %q (known: %s, all)", unknown, knownList())
	}
	return cats, nil
}

// ParseLevel accepts TRACE, WARNING and anything slog.Level understands
// (DEBUG, INFO, WARN, ERROR, with optional offsets such as "DEBUG-2").
// An empty string means INFO.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "":
		return slog.LevelInfo, nil
	case "TRACE":
		return LevelTrace, nil
	case "WARNING":
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.Newf("unknown log level %q", s)
	}
	return l, nil
}

type enabledSet struct {
	all  bool
	cats map[Category]bool
}

var enabled atomic.Pointer[enabledSet]

func init() {
	cats, _ := ParseCategories(os.Getenv(EnvCategories))
	enable(cats)
}

func enable(cats []Category) {
	set := &enabledSet{cats: make(map[Category]bool, len(cats))}
	for _, c := range cats {
		if c == All {
			set.all = true
		}
		set.cats[c] = true
	}
	enabled.Store(set)
}

// Apply enables s.Categories and installs a text slog handler on w at
// s.Level as the default logger.
func Apply(s Settings, w io.Writer) {
	enable(s.Categories)
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: s.Level})))
}

// Configure resolves settings from the environment, falling back to the
// given config values, and applies them with output on stderr.
func Configure(categories, level string) (Settings, error) {
	if v := os.Getenv(EnvCategories); v != "" {
		categories = v
	}
	if v := os.Getenv(EnvLevel); v != "" {
		level = v
	}
	s, err := ParseSettings(categories, level)
	if err != nil {
		return s, errors.Wrap(err, "logging")
	}
	Apply(s, os.Stderr)
	return s, nil
}

// Enabled reports whether output for c is switched on.
func Enabled(c Category) bool {
	set := enabled.Load()
	return set.all || set.cats[c]
}

// Log emits a DEBUG record tagged with c when c is enabled.
func Log(c Category, msg string, args ...any) {
	emit(slog.LevelDebug, c, msg, args)
}

// Trace is Log at LevelTrace.
func Trace(c Category, msg string, args ...any) {
	emit(LevelTrace, c, msg, args)
}

func emit(level slog.Level, c Category, msg string, args []any) {
	if !Enabled(c) {
		return
	}
	slog.Default().Log(context.Background(), level, msg, append([]any{"debug", string(c)}, args...)...)
}

// Truncate shortens s to at most n bytes without splitting a UTF-8
// sequence, marking the cut with "...".
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func knownList() string {
	names := make([]string, len(known))
	for i, c := range known {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
