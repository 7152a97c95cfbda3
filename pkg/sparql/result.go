package sparql

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"html"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Result is the outcome of a query: a solution table for SELECT or a
// boolean for ASK.
type Result struct {
	Form    QueryForm
	Vars    []string
	Rows    []Solution
	Boolean bool

	ns *rdf.NamespaceManager
}

// Serialize encodes the result in one of the SPARQL results formats.
func (r *Result) Serialize(f api.Format) ([]byte, error) {
	switch f {
	case api.FormatXML:
		return r.xml()
	case api.FormatJSON:
		return r.json()
	case api.FormatHTML:
		return r.html(), nil
	}
	return nil, api.NewUnsupportedFormatError(string(f))
}

const resultsNS = "http://www.w3.org/2005/sparql-results#"

type xmlSparql struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/sparql-results# sparql"`
	Head    xmlHead     `xml:"head"`
	Results *xmlResults `xml:"results,omitempty"`
	Boolean *bool       `xml:"boolean,omitempty"`
}

type xmlHead struct {
	Variables []xmlVariable `xml:"variable"`
}

type xmlVariable struct {
	Name string `xml:"name,attr"`
}

type xmlResults struct {
	Results []xmlResult `xml:"result"`
}

type xmlResult struct {
	Bindings []xmlBinding `xml:"binding"`
}

type xmlBinding struct {
	Name    string      `xml:"name,attr"`
	URI     *string     `xml:"uri,omitempty"`
	BNode   *string     `xml:"bnode,omitempty"`
	Literal *xmlLiteral `xml:"literal,omitempty"`
}

type xmlLiteral struct {
	Lang     string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Datatype string `xml:"datatype,attr,omitempty"`
	Value    string `xml:",chardata"`
}

func (r *Result) xml() ([]byte, error) {
	doc := xmlSparql{}
	if r.Form == FormAsk {
		b := r.Boolean
		doc.Boolean = &b
	} else {
		doc.Results = &xmlResults{}
		for _, v := range r.Vars {
			doc.Head.Variables = append(doc.Head.Variables, xmlVariable{Name: v})
		}
		for _, row := range r.Rows {
			var res xmlResult
			for _, v := range r.Vars {
				t, ok := row[v]
				if !ok {
					continue
				}
				b := xmlBinding{Name: v}
				value := t.Value
				switch t.Kind {
				case rdf.KindIRI:
					b.URI = &value
				case rdf.KindBlank:
					b.BNode = &value
				default:
					b.Literal = &xmlLiteral{Lang: t.Lang, Datatype: t.Datatype, Value: value}
				}
				res.Bindings = append(res.Bindings, b)
			}
			doc.Results.Results = append(doc.Results.Results, res)
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding XML results")
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

type jsonTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

type jsonHead struct {
	Vars []string `json:"vars,omitempty"`
}

type jsonResults struct {
	Bindings []map[string]jsonTerm `json:"bindings"`
}

type jsonSparql struct {
	Head    jsonHead     `json:"head"`
	Results *jsonResults `json:"results,omitempty"`
	Boolean *bool        `json:"boolean,omitempty"`
}

func (r *Result) json() ([]byte, error) {
	doc := jsonSparql{}
	if r.Form == FormAsk {
		b := r.Boolean
		doc.Boolean = &b
	} else {
		doc.Head.Vars = r.Vars
		doc.Results = &jsonResults{Bindings: make([]map[string]jsonTerm, 0, len(r.Rows))}
		for _, row := range r.Rows {
			b := make(map[string]jsonTerm, len(row))
			for v, t := range row {
				b[v] = jsonTerm{Type: t.Kind.String(), Value: t.Value, Lang: t.Lang, Datatype: t.Datatype}
			}
			doc.Results.Bindings = append(doc.Results.Bindings, b)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding JSON results")
	}
	return buf.Bytes(), nil
}

// html renders the result as a table fragment for the results page. IRIs
// are shortened with the namespace manager and linked.
func (r *Result) html() []byte {
	var b strings.Builder
	if r.Form == FormAsk {
		b.WriteString(`<p class="boolean">`)
		if r.Boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		b.WriteString("</p>\n")
		return []byte(b.String())
	}

	b.WriteString("<table class=\"results\">\n<thead><tr>")
	for _, v := range r.Vars {
		b.WriteString("<th>?")
		b.WriteString(html.EscapeString(v))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range r.Rows {
		b.WriteString("<tr>")
		for _, v := range r.Vars {
			b.WriteString("<td>")
			if t, ok := row[v]; ok {
				b.WriteString(r.htmlTerm(t))
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return []byte(b.String())
}

func (r *Result) htmlTerm(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindIRI:
		return `<a href="` + html.EscapeString(t.Value) + `">` + html.EscapeString(r.shorten(t.Value)) + "</a>"
	case rdf.KindBlank:
		return html.EscapeString("_:" + t.Value)
	}
	s := html.EscapeString(t.Value)
	switch {
	case t.Lang != "":
		s += `<span class="lang">@` + html.EscapeString(t.Lang) + "</span>"
	case t.Datatype != "":
		s += `<span class="datatype">^^` + html.EscapeString(r.shorten(t.Datatype)) + "</span>"
	}
	return s
}

func (r *Result) shorten(iri string) string {
	if r.ns != nil {
		if q, ok := r.ns.QName(iri); ok {
			return q
		}
	}
	return "<" + iri + ">"
}
