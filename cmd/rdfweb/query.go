package main

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/JervenBolleman/rdflib-web/pkg/api"
	"github.com/JervenBolleman/rdflib-web/pkg/config"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "query QUERY [FILE...]",
		Short: "Run a SPARQL query and print the serialized results",
		Long: `Run a SPARQL SELECT or ASK query against the given RDF files and
print the results. A QUERY of "-" is read from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := api.ParseFormat(format)
			if err != nil {
				return err
			}
			query := args[0]
			if query == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "reading query")
				}
				query = string(b)
			}

			cfg, err := opts.loadConfig(cmd, args[1:])
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), cfg, query, f, cmd.OutOrStdout())
		},
	}

	c.Flags().StringVarP(&format, "format", "f", string(api.DefaultFormat), "result format: xml, json or html")
	return c
}

func runQuery(ctx context.Context, cfg *config.Config, query string, format api.Format, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cfg.Graph)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Query(ctx, query)
	if err != nil {
		return api.NewQueryExecutionError(query, err)
	}
	body, err := result.Serialize(format)
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
