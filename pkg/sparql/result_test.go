package sparql

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

func sampleResult() *Result {
	nm := rdf.NewNamespaceManager()
	nm.Bind("ex", "http://example.org/", true)
	return &Result{
		Form: FormSelect,
		Vars: []string{"s", "o"},
		Rows: []Solution{
			{"s": rdf.IRI("http://example.org/a"), "o": rdf.LangLiteral("hello", "en")},
			{"s": rdf.Blank("b1"), "o": rdf.Integer(42)},
			{"s": rdf.IRI("http://other.org/x#y/z")},
			{"s": rdf.IRI("http://example.org/c"), "o": rdf.Literal("<b>&</b>")},
		},
		ns: nm,
	}
}

func TestResult_XML(t *testing.T) {
	out, err := sampleResult().Serialize(api.FormatXML)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<sparql xmlns="` + resultsNS + `">`,
		`<variable name="s"></variable>`,
		`<uri>http://example.org/a</uri>`,
		`<literal xml:lang="en">hello</literal>`,
		`<bnode>b1</bnode>`,
		`<literal datatype="http://www.w3.org/2001/XMLSchema#integer">42</literal>`,
		`&lt;b&gt;&amp;&lt;/b&gt;`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("XML output missing %q:\n%s", want, s)
		}
	}

	var doc xmlSparql
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not well-formed: %v", err)
	}
	if len(doc.Results.Results) != 4 {
		t.Errorf("got %d results, want 4", len(doc.Results.Results))
	}
	// Unbound variables are omitted from a result.
	if n := len(doc.Results.Results[2].Bindings); n != 1 {
		t.Errorf("third result has %d bindings, want 1", n)
	}
}

func TestResult_JSON(t *testing.T) {
	out, err := sampleResult().Serialize(api.FormatJSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var doc struct {
		Head struct {
			Vars []string `json:"vars"`
		} `json:"head"`
		Results struct {
			Bindings []map[string]map[string]string `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if strings.Join(doc.Head.Vars, ",") != "s,o" {
		t.Errorf("vars = %v", doc.Head.Vars)
	}
	if len(doc.Results.Bindings) != 4 {
		t.Fatalf("got %d bindings, want 4", len(doc.Results.Bindings))
	}

	first := doc.Results.Bindings[0]
	if first["s"]["type"] != "uri" || first["s"]["value"] != "http://example.org/a" {
		t.Errorf("s = %v", first["s"])
	}
	if first["o"]["type"] != "literal" || first["o"]["xml:lang"] != "en" {
		t.Errorf("o = %v", first["o"])
	}
	second := doc.Results.Bindings[1]
	if second["s"]["type"] != "bnode" || second["o"]["datatype"] != rdf.XSDInteger {
		t.Errorf("second = %v", second)
	}
	if _, ok := doc.Results.Bindings[2]["o"]; ok {
		t.Error("unbound variable should be absent")
	}
	if !strings.Contains(string(out), "<b>&</b>") {
		t.Error("JSON output should not HTML-escape literals")
	}
}

func TestResult_HTML(t *testing.T) {
	out, err := sampleResult().Serialize(api.FormatHTML)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		`<table class="results">`,
		`<th>?s</th><th>?o</th>`,
		`<a href="http://example.org/a">ex:a</a>`,
		`hello<span class="lang">@en</span>`,
		`42<span class="datatype">^^xsd:integer</span>`,
		`_:b1`,
		`<a href="http://other.org/x#y/z">&lt;http://other.org/x#y/z&gt;</a>`,
		`&lt;b&gt;&amp;&lt;/b&gt;`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("HTML output missing %q:\n%s", want, s)
		}
	}
}

func TestResult_Ask(t *testing.T) {
	r := &Result{Form: FormAsk, Boolean: true}

	x, err := r.Serialize(api.FormatXML)
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	if !strings.Contains(string(x), "<boolean>true</boolean>") || strings.Contains(string(x), "<results>") {
		t.Errorf("XML ask result:\n%s", x)
	}

	j, err := r.Serialize(api.FormatJSON)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.TrimSpace(string(j)) != `{"head":{},"boolean":true}` {
		t.Errorf("JSON ask result = %s", j)
	}

	h, err := r.Serialize(api.FormatHTML)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(h), "true") {
		t.Errorf("HTML ask result = %s", h)
	}
}

func TestResult_UnsupportedFormat(t *testing.T) {
	_, err := sampleResult().Serialize(api.Format("csv"))
	if !api.IsUnsupportedFormat(err) {
		t.Errorf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestResult_EndToEndXML(t *testing.T) {
	e := newBookEngine(t)
	r, err := e.Query(context.Background(), "SELECT ?t WHERE { book:book1 dc:title ?t }")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	out, err := r.Serialize(api.FormatXML)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(out), "<literal>Harry Potter and the Philosopher&#39;s Stone</literal>") {
		t.Errorf("unexpected XML:\n%s", out)
	}
}
