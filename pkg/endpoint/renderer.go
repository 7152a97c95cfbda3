package endpoint

import (
	"bytes"
	"embed"
	"html/template"
	"maps"
	"runtime"
	"runtime/debug"

	"github.com/cockroachdb/errors"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ExecutionTimeToken is replaced with the request duration when an HTML
// page is finalized.
const ExecutionTimeToken = "__EXECUTION_TIME__"

// Page template names.
const (
	IndexTemplate   = "index.html"
	ResultsTemplate = "results.html"
)

// Renderer renders the embedded HTML page templates. Every template sees
// the globals Title, Version and GoVersion next to its own variables.
type Renderer struct {
	tmpl    *template.Template
	globals map[string]any
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing page templates")
	}
	return &Renderer{
		tmpl: tmpl,
		globals: map[string]any{
			"Title":     "rdflib-web",
			"Version":   Version(),
			"GoVersion": runtime.Version(),
		},
	}, nil
}

// Render executes the named template with vars.
func (r *Renderer) Render(name string, vars map[string]any) ([]byte, error) {
	data := maps.Clone(r.globals)
	maps.Copy(data, vars)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "rendering %s", name)
	}
	return buf.Bytes(), nil
}

// Version returns the module version recorded in the build, or "(devel)".
func Version() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}
