package graph

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

//go:embed bookdb.ttl
var bookDB []byte

// Load parses the RDF file at path and adds its triples and prefix
// declarations to g. An empty syntax is guessed from the extension.
func Load(ctx context.Context, g Graph, path string, syntax rdf.Syntax) (int, error) {
	doc, err := rdf.DecodeFile(path, syntax)
	if err != nil {
		return 0, err
	}
	if err := addDocument(ctx, g, doc); err != nil {
		return 0, errors.Wrapf(err, "loading %s", path)
	}
	debug.Log(debug.Graph, "loaded file", "path", path, "triples", len(doc.Triples))
	return len(doc.Triples), nil
}

// BookDB seeds g with the sample book database served when no data file
// is given.
func BookDB(ctx context.Context, g Graph) error {
	doc, err := rdf.Decode(bytes.NewReader(bookDB), rdf.SyntaxTurtle)
	if err != nil {
		return errors.Wrap(err, "decoding book database")
	}
	if err := addDocument(ctx, g, doc); err != nil {
		return errors.Wrap(err, "loading book database")
	}
	slog.Info("sample book database loaded", "triples", len(doc.Triples))
	return nil
}

func addDocument(ctx context.Context, g Graph, doc *rdf.Document) error {
	if err := g.Add(ctx, doc.Triples...); err != nil {
		return err
	}
	for _, ns := range doc.Namespaces {
		if err := g.Bind(ctx, ns.Prefix, ns.URI); err != nil {
			return err
		}
	}
	return nil
}

// RegisterNamespaces binds every prefix declared by g into nm, replacing
// existing bindings. Called once at startup.
func RegisterNamespaces(ctx context.Context, g Graph, nm *rdf.NamespaceManager) error {
	nss, err := g.Namespaces(ctx)
	if err != nil {
		return errors.Wrap(err, "listing graph namespaces")
	}
	for _, ns := range nss {
		nm.Bind(ns.Prefix, ns.URI, true)
	}
	debug.Log(debug.Graph, "namespaces registered", "count", len(nss))
	return nil
}
