// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the SPARQL endpoint.
package observability

import "github.com/prometheus/client_golang/prometheus"

// QueryBuckets defines histogram buckets for query latencies, from 1ms
// to 30s.
var QueryBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

var (
	// RequestsTotal counts HTTP requests by method, status class and
	// response format.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdfweb_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "format"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rdfweb_request_duration_seconds",
			Help:    "Request duration",
			Buckets: QueryBuckets,
		},
		[]string{"method", "format"},
	)

	// QueryDuration records query evaluation time by query form.
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rdfweb_query_duration_seconds",
			Help:    "Query evaluation duration",
			Buckets: QueryBuckets,
		},
		[]string{"form"},
	)

	// QueryErrorsTotal counts requests answered with an error trace, by
	// error kind.
	QueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdfweb_query_errors_total",
			Help: "Failed query requests",
		},
		[]string{"kind"},
	)

	// GraphTriples reports the number of triples in the served graph.
	GraphTriples = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rdfweb_graph_triples",
			Help: "Triples in the served graph",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		QueryDuration,
		QueryErrorsTotal,
		GraphTriples,
	)
}
