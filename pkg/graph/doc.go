// Package graph defines the Graph contract implemented by the triple
// stores (memory, pebble, postgres) together with the helpers shared by
// every store: loading RDF files, seeding the sample book database, and
// registering a graph's prefixes with a namespace manager.
//
// Stores are opened once at startup and shared by all requests; every
// implementation is safe for concurrent reads.
package graph
