// Package negotiate resolves the result format and response MIME type of
// a query request from its Accept header and the output and force-accept
// parameters.
//
// Precedence, lowest to highest:
//
//	default          xml
//	Accept header    text/html, else application/sparql-results+json
//	output=...       replaces the format chosen so far
//	force-accept=... replaces the MIME type only
//
// Header inspection is substring containment, not weighted Accept
// parsing, and HTML is tested before JSON.
package negotiate

import (
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
)

// Request parameter names.
const (
	ParamQuery       = "query"
	ParamOutput      = "output"
	ParamForceAccept = "force-accept"
)

// Signals are the request inputs that influence negotiation.
type Signals struct {
	Accept         string
	Output         string
	HasOutput      bool
	ForceAccept    string
	HasForceAccept bool
	Query          string
}

// Resolved is the outcome of negotiation: the serialization format and
// the Content-Type to emit.
type Resolved struct {
	Format   api.Format
	MIMEType string
}

// Resolve computes the format and MIME type for s. It is a pure function
// of its input. An output value outside the format table yields an
// UnsupportedFormatError.
func Resolve(s Signals) (Resolved, error) {
	format := api.DefaultFormat

	switch {
	case strings.Contains(s.Accept, api.MIMEHTML):
		format = api.FormatHTML
	case strings.Contains(s.Accept, api.MIMESPARQLResultsJSON):
		format = api.FormatJSON
	}

	if s.HasOutput {
		f, err := api.ParseFormat(s.Output)
		if err != nil {
			return Resolved{}, err
		}
		format = f
	}

	mime, ok := api.MIMEType(format)
	if !ok {
		return Resolved{}, api.NewUnsupportedFormatError(string(format))
	}
	if s.HasForceAccept {
		mime = s.ForceAccept
	}
	return Resolved{Format: format, MIMEType: mime}, nil
}

// SignalsFromRequest captures the negotiation inputs of r. Parameters are
// read from the URL query and, for form posts, the body. A POST with
// Content-Type application/sparql-query carries the query as its body.
func SignalsFromRequest(r *http.Request) (Signals, error) {
	s := Signals{Accept: r.Header.Get("Accept")}

	if r.Method == http.MethodPost && isSPARQLQueryBody(r) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return s, errors.Wrap(err, "reading query body")
		}
		s.Query = string(body)
		if r.Form == nil {
			r.Form = r.URL.Query()
		}
	} else if err := r.ParseForm(); err != nil {
		return s, errors.Wrap(err, "parsing form")
	}

	if s.Query == "" {
		s.Query = r.Form.Get(ParamQuery)
	}
	if v, ok := r.Form[ParamOutput]; ok && len(v) > 0 {
		s.Output, s.HasOutput = v[0], true
	}
	if v, ok := r.Form[ParamForceAccept]; ok && len(v) > 0 {
		s.ForceAccept, s.HasForceAccept = v[0], true
	}
	return s, nil
}

// MIMESPARQLQuery is the Content-Type of a POST whose body is the query.
const MIMESPARQLQuery = "application/sparql-query"

func isSPARQLQueryBody(r *http.Request) bool {
	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	return strings.EqualFold(strings.TrimSpace(ct), MIMESPARQLQuery)
}
