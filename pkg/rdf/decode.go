package rdf

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	knakk "github.com/knakk/rdf"
)

// Syntax names an RDF document syntax.
type Syntax string

const (
	SyntaxTurtle   Syntax = "turtle"
	SyntaxNTriples Syntax = "nt"
	SyntaxRDFXML   Syntax = "xml"
)

// ParseSyntax maps a user-supplied syntax name to a Syntax.
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "turtle", "ttl", "n3":
		return SyntaxTurtle, nil
	case "nt", "ntriples", "n-triples":
		return SyntaxNTriples, nil
	case "xml", "rdfxml", "rdf/xml", "rdf":
		return SyntaxRDFXML, nil
	}
	return "", errors.Newf("unknown RDF syntax %q", s)
}

// SyntaxFromPath guesses the syntax of a file from its extension,
// defaulting to RDF/XML like rdflib does.
func SyntaxFromPath(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".n3", ".turtle":
		return SyntaxTurtle
	case ".nt":
		return SyntaxNTriples
	default:
		return SyntaxRDFXML
	}
}

func (s Syntax) knakk() (knakk.Format, error) {
	switch s {
	case SyntaxTurtle:
		return knakk.Turtle, nil
	case SyntaxNTriples:
		return knakk.NTriples, nil
	case SyntaxRDFXML:
		return knakk.RDFXML, nil
	}
	var zero knakk.Format
	return zero, errors.Newf("unsupported RDF syntax %q", string(s))
}

// Document is the result of decoding an RDF document.
type Document struct {
	Triples    []Triple
	Namespaces []Namespace
}

// Decode parses an RDF document in the given syntax.
func Decode(r io.Reader, syntax Syntax) (*Document, error) {
	f, err := syntax.knakk()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading RDF document")
	}

	doc := &Document{}
	if syntax == SyntaxTurtle {
		doc.Namespaces = scanTurtlePrefixes(data)
	}

	dec := knakk.NewTripleDecoder(bytes.NewReader(data), f)
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s triple %d", syntax, len(doc.Triples)+1)
		}
		doc.Triples = append(doc.Triples, fromKnakkTriple(tr))
	}
	return doc, nil
}

// DecodeFile opens and parses an RDF file. An empty syntax is guessed from
// the file extension.
func DecodeFile(path string, syntax Syntax) (*Document, error) {
	if syntax == "" {
		syntax = SyntaxFromPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	doc, err := Decode(bufio.NewReader(f), syntax)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return doc, nil
}

// ParseNTriplesTerm decodes a single term written in N-Triples syntax,
// as produced by Term.NTriples.
func ParseNTriplesTerm(s string) (Term, error) {
	line := "<urn:x-term:s> <urn:x-term:p> " + s + " .\n"
	dec := knakk.NewTripleDecoder(strings.NewReader(line), knakk.NTriples)
	tr, err := dec.Decode()
	if err != nil {
		return Term{}, errors.Wrapf(err, "decoding term %q", s)
	}
	return fromKnakk(tr.Obj), nil
}

func fromKnakkTriple(t knakk.Triple) Triple {
	return Triple{S: fromKnakk(t.Subj), P: fromKnakk(t.Pred), O: fromKnakk(t.Obj)}
}

func fromKnakk(t knakk.Term) Term {
	switch v := t.(type) {
	case knakk.IRI:
		return IRI(v.String())
	case knakk.Blank:
		return Blank(strings.TrimPrefix(v.String(), "_:"))
	case knakk.Literal:
		if lang := v.Lang(); lang != "" {
			return LangLiteral(v.String(), lang)
		}
		return TypedLiteral(v.String(), v.DataType.String())
	}
	return Term{}
}

var turtlePrefixRE = regexp.MustCompile(`(?mi)^\s*@?prefix\s+([A-Za-z][\w.-]*)?:\s*<([^>]*)>`)

// scanTurtlePrefixes collects the prefix declarations of a Turtle
// document; the triple decoder resolves them but does not expose them.
func scanTurtlePrefixes(data []byte) []Namespace {
	var out []Namespace
	for _, m := range turtlePrefixRE.FindAllSubmatch(data, -1) {
		out = append(out, Namespace{Prefix: string(m[1]), URI: string(m[2])})
	}
	return out
}
