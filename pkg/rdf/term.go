// Package rdf holds the RDF data model used by the graph stores and the
// SPARQL engine: terms, triples, the namespace manager that shortens IRIs
// for HTML output, and decoding of RDF documents.
package rdf

import (
	"strconv"
	"strings"
)

// Well-known vocabulary IRIs.
const (
	NSRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NSXSD  = "http://www.w3.org/2001/XMLSchema#"
	NSOWL  = "http://www.w3.org/2002/07/owl#"

	RDFType        = NSRDF + "type"
	RDFLangString  = NSRDF + "langString"
	XSDString      = NSXSD + "string"
	XSDBoolean     = NSXSD + "boolean"
	XSDInteger     = NSXSD + "integer"
	XSDDecimal     = NSXSD + "decimal"
	XSDDouble      = NSXSD + "double"
	XSDFloat       = NSXSD + "float"
	XSDDate        = NSXSD + "date"
	XSDDateTime    = NSXSD + "dateTime"
	XSDInt         = NSXSD + "int"
	XSDLong        = NSXSD + "long"
	XSDNonNegative = NSXSD + "nonNegativeInteger"
)

// Kind discriminates the three RDF term types.
type Kind uint8

const (
	KindIRI Kind = iota + 1
	KindBlank
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "uri"
	case KindBlank:
		return "bnode"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is an RDF term. Terms are comparable values; two terms are the same
// RDF term exactly when they are ==.
//
// Plain literals have an empty Datatype. A literal typed xsd:string is
// normalized to a plain literal by the constructors.
type Term struct {
	Kind     Kind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an IRI term.
func IRI(iri string) Term { return Term{Kind: KindIRI, Value: iri} }

// Blank returns a blank node with the given label (without "_:").
func Blank(label string) Term { return Term{Kind: KindBlank, Value: label} }

// Literal returns a plain literal.
func Literal(lex string) Term { return Term{Kind: KindLiteral, Value: lex} }

// LangLiteral returns a language-tagged literal. Tags are lower-cased.
func LangLiteral(lex, lang string) Term {
	return Term{Kind: KindLiteral, Value: lex, Lang: strings.ToLower(lang)}
}

// TypedLiteral returns a literal with a datatype IRI.
func TypedLiteral(lex, datatype string) Term {
	if datatype == XSDString || datatype == "" {
		return Literal(lex)
	}
	return Term{Kind: KindLiteral, Value: lex, Datatype: datatype}
}

// Integer returns an xsd:integer literal.
func Integer(n int64) Term { return TypedLiteral(strconv.FormatInt(n, 10), XSDInteger) }

// Boolean returns an xsd:boolean literal.
func Boolean(b bool) Term { return TypedLiteral(strconv.FormatBool(b), XSDBoolean) }

// IsZero reports whether t is the zero Term (no term).
func (t Term) IsZero() bool { return t.Kind == 0 }

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// String returns the N-Triples form of the term.
func (t Term) String() string { return t.NTriples() }

// NTriples encodes the term in N-Triples syntax.
func (t Term) NTriples() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		var b strings.Builder
		b.WriteByte('"')
		b.WriteString(escapeLiteral(t.Value))
		b.WriteByte('"')
		if t.Lang != "" {
			b.WriteByte('@')
			b.WriteString(t.Lang)
		} else if t.Datatype != "" {
			b.WriteString("^^<")
			b.WriteString(t.Datatype)
			b.WriteByte('>')
		}
		return b.String()
	default:
		return ""
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\u0000`,
)

func escapeLiteral(s string) string { return literalEscaper.Replace(s) }

// Triple is a subject-predicate-object statement.
type Triple struct {
	S, P, O Term
}

// T is shorthand for building a triple.
func T(s, p, o Term) Triple { return Triple{S: s, P: p, O: o} }

// String returns the triple as an N-Triples line without the newline.
func (t Triple) String() string {
	return t.S.NTriples() + " " + t.P.NTriples() + " " + t.O.NTriples() + " ."
}
