// Package mcpserver exposes the SPARQL endpoint as Model Context Protocol
// tools, so MCP clients can query the graph without speaking the SPARQL
// protocol.
//
// Tools:
//   - sparql_query runs a SELECT or ASK query and returns the serialized
//     results (json by default, or xml or html).
//   - list_namespaces lists the prefix bindings usable in queries.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/endpoint"
	"github.com/JervenBolleman/rdflib-web/pkg/observability"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Tool names.
const (
	ToolQuery          = "sparql_query"
	ToolListNamespaces = "list_namespaces"
)

// QueryInput is the argument object of the sparql_query tool.
type QueryInput struct {
	Query  string `json:"query" jsonschema:"the SPARQL SELECT or ASK query to run"`
	Format string `json:"format,omitempty" jsonschema:"result format: json (default), xml or html"`
}

// New returns an MCP server whose tools query engine. Prefixes are listed
// from nm.
func New(engine endpoint.Engine, nm *rdf.NamespaceManager) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "rdfweb", Version: endpoint.Version()},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolQuery,
		Description: "Runs a SPARQL SELECT or ASK query against the graph and returns the results in the SPARQL results format",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, struct{}, error) {
		body, err := runQuery(ctx, engine, in)
		if err != nil {
			observability.QueryErrorsTotal.WithLabelValues(api.ErrorKind(err)).Inc()
			debug.Log(debug.MCP, "tool call failed", "tool", ToolQuery, "error", err)
			return errorResult(err), struct{}{}, nil
		}
		return textResult(string(body)), struct{}{}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListNamespaces,
		Description: "Lists the namespace prefixes bound in the endpoint, one \"prefix: uri\" pair per line",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		var b strings.Builder
		for _, ns := range nm.Namespaces() {
			fmt.Fprintf(&b, "%s: %s\n", ns.Prefix, ns.URI)
		}
		return textResult(b.String()), struct{}{}, nil
	})

	return server
}

// Handler serves server over the streamable HTTP transport.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func runQuery(ctx context.Context, engine endpoint.Engine, in QueryInput) ([]byte, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, api.ErrMissingQuery
	}
	format := api.FormatJSON
	if in.Format != "" {
		f, err := api.ParseFormat(in.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	debug.Log(debug.MCP, "tool call", "tool", ToolQuery, "format", format)

	result, err := engine.Query(ctx, in.Query)
	if err != nil {
		return nil, api.NewQueryExecutionError(in.Query, err)
	}
	body, err := result.Serialize(format)
	if err != nil {
		return nil, api.NewQueryExecutionError(in.Query, err)
	}
	return body, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}
