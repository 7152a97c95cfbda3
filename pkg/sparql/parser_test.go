package sparql

import (
	"errors"
	"strings"
	"testing"

	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		form     QueryForm
		vars     []string
		distinct bool
		limit    int
		offset   int
	}{
		{
			name:  "select star",
			query: "SELECT * WHERE { ?s ?p ?o }",
			form:  FormSelect,
			vars:  []string{"s", "p", "o"},
			limit: -1,
		},
		{
			name:  "where keyword optional",
			query: "SELECT ?s { ?s ?p ?o }",
			form:  FormSelect,
			vars:  []string{"s"},
			limit: -1,
		},
		{
			name: "prefixes and modifiers",
			query: `PREFIX dc: <http://purl.org/dc/elements/1.1/>
				SELECT DISTINCT ?t WHERE { ?b dc:title ?t . }
				ORDER BY DESC(?t) LIMIT 5 OFFSET 2`,
			form:     FormSelect,
			vars:     []string{"t"},
			distinct: true,
			limit:    5,
			offset:   2,
		},
		{
			name:  "ask",
			query: "ASK { <http://example.org/a> ?p 42 }",
			form:  FormAsk,
			vars:  nil,
			limit: -1,
		},
		{
			name:  "lowercase keywords and dollar vars",
			query: "select $x where { $x a <http://example.org/C> } limit 1",
			form:  FormSelect,
			vars:  []string{"x"},
			limit: 1,
		},
		{
			name:  "blank nodes hidden from star",
			query: "SELECT * { ?s <http://example.org/p> [ <http://example.org/q> ?v ] . _:b <http://example.org/r> ?s }",
			form:  FormSelect,
			vars:  []string{"s", "v"},
			limit: -1,
		},
		{
			name: "comments, optional, union, filter",
			query: `# leading comment
				SELECT ?s WHERE {
				  { ?s ?p 1 } UNION { ?s ?p 2.5 } # trailing
				  OPTIONAL { ?s <http://example.org/l> ?l FILTER(LANGMATCHES(LANG(?l), "en")) }
				  FILTER (?p != <http://example.org/x> && (BOUND(?l) || !isBlank(?s)))
				}`,
			form:  FormSelect,
			vars:  []string{"s"},
			limit: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query, nil)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if q.Form != tt.form {
				t.Errorf("Form = %v, want %v", q.Form, tt.form)
			}
			if strings.Join(q.Vars, ",") != strings.Join(tt.vars, ",") {
				t.Errorf("Vars = %v, want %v", q.Vars, tt.vars)
			}
			if q.Distinct != tt.distinct {
				t.Errorf("Distinct = %v, want %v", q.Distinct, tt.distinct)
			}
			if q.Limit != tt.limit {
				t.Errorf("Limit = %d, want %d", q.Limit, tt.limit)
			}
			if q.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", q.Offset, tt.offset)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"garbage", "INVALID SYNTAX !!!", "expected SELECT or ASK"},
		{"construct", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", "CONSTRUCT queries are not supported"},
		{"unknown prefix", "SELECT * { ?s foo:bar ?o }", `unknown prefix "foo"`},
		{"unterminated group", "SELECT * { ?s ?p ?o", "unterminated group"},
		{"unterminated group after dot", "SELECT * { ?s ?p ?o .", "unterminated group"},
		{"unterminated nested group", "SELECT * { OPTIONAL { ?s ?p ?o }", "unterminated group"},
		{"missing dot", "SELECT * { ?s ?p ?o ?a ?b ?c }", "expected '.' or '}'"},
		{"no projection", "SELECT WHERE { ?s ?p ?o }", "expected variables or '*'"},
		{"unterminated string", `SELECT * { ?s ?p "abc }`, "unterminated string"},
		{"unknown function", "SELECT * { ?s ?p ?o FILTER(FOO(?o)) }", "unknown function FOO"},
		{"bound needs var", `SELECT * { ?s ?p ?o FILTER(BOUND("x")) }`, "BOUND requires a variable"},
		{"trailing tokens", "ASK { ?s ?p ?o } }", "after query"},
		{"bad limit", "SELECT * { ?s ?p ?o } LIMIT ten", "expected integer after LIMIT"},
		{"graph", "SELECT * { GRAPH ?g { ?s ?p ?o } }", "GRAPH is not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %v is not a *SyntaxError", err)
			}
			if !strings.Contains(se.Msg, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", se.Msg, tt.wantMsg)
			}
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("SELECT *\nWHERE {\n  ?s ?p ?o ?x ?y ?z }", nil)
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if se.Line != 3 || se.Col != 12 {
		t.Errorf("position = %d:%d, want 3:12", se.Line, se.Col)
	}
}

func TestParse_Terms(t *testing.T) {
	q, err := Parse(`BASE <http://example.org/base/>
		PREFIX : <http://example.org/>
		SELECT * WHERE {
		  :s :p "chat"@FR, 'it\'s'^^<http://www.w3.org/2001/XMLSchema#string>, """multi
line""", -3, 1.5e2, true ;
		     a <rel> .
		}`, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	bgp := q.Where.Patterns[0].(BGP)
	objects := make([]rdf.Term, len(bgp))
	for i, tp := range bgp {
		objects[i] = tp.O.Term
	}
	expected := []rdf.Term{
		rdf.LangLiteral("chat", "fr"),
		rdf.Literal("it's"),
		rdf.Literal("multi\nline"),
		rdf.TypedLiteral("-3", rdf.XSDInteger),
		rdf.TypedLiteral("1.5e2", rdf.XSDDouble),
		rdf.Boolean(true),
		rdf.IRI("http://example.org/base/rel"),
	}
	if len(objects) != len(expected) {
		t.Fatalf("got %d triples, want %d", len(objects), len(expected))
	}
	for i := range expected {
		if objects[i] != expected[i] {
			t.Errorf("object %d = %v, want %v", i, objects[i], expected[i])
		}
	}
	if bgp[0].S.Term != rdf.IRI("http://example.org/s") {
		t.Errorf("subject = %v", bgp[0].S.Term)
	}
	if bgp[6].P.Term != rdf.IRI(rdf.RDFType) {
		t.Errorf("'a' = %v, want rdf:type", bgp[6].P.Term)
	}
}

func TestParse_NamespaceFallback(t *testing.T) {
	nm := rdf.NewNamespaceManager()
	nm.Bind("dc", "http://purl.org/dc/elements/1.1/", true)

	q, err := Parse("SELECT ?t { ?b dc:title ?t ; rdf:type ?c }", nm)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	bgp := q.Where.Patterns[0].(BGP)
	if got := bgp[0].P.Term.Value; got != "http://purl.org/dc/elements/1.1/title" {
		t.Errorf("dc:title expanded to %q", got)
	}

	// A declared prefix wins over the manager.
	q, err = Parse("PREFIX dc: <http://example.org/dc#> SELECT ?t { ?b dc:title ?t }", nm)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	bgp = q.Where.Patterns[0].(BGP)
	if got := bgp[0].P.Term.Value; got != "http://example.org/dc#title" {
		t.Errorf("dc:title expanded to %q", got)
	}
}

func TestLex_LessThanVersusIRI(t *testing.T) {
	toks, err := lex("FILTER(?x < 3 && ?y <= <http://e/x>)")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	var kinds []string
	for _, tok := range toks {
		if tok.kind == tokPunct && (tok.text == "<" || tok.text == "<=") {
			kinds = append(kinds, tok.text)
		}
		if tok.kind == tokIRI {
			kinds = append(kinds, "iri:"+tok.text)
		}
	}
	if got := strings.Join(kinds, " "); got != "< <= iri:http://e/x" {
		t.Errorf("tokens = %q", got)
	}
}
