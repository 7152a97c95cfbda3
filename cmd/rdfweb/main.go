// Command rdfweb serves RDF graphs over the SPARQL protocol.
//
// Usage:
//
//	rdfweb serve [FILE...]            serve a SPARQL endpoint
//	rdfweb query QUERY [FILE...]      run one query and print the results
//
// Without data files the sample book database is served. Configuration
// is read from a YAML file (--config, RDFWEB_CONFIG, ./config.yaml or
// /etc/rdfweb/config.yaml) and RDFWEB_* environment variables; a .env file
// in the working directory is loaded first.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JervenBolleman/rdflib-web/pkg/config"
	"github.com/JervenBolleman/rdflib-web/pkg/debug"
	"github.com/JervenBolleman/rdflib-web/pkg/endpoint"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("rdfweb failed", "error", err)
		os.Exit(1)
	}
}

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	store      string
	syntax     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "rdfweb",
		Short:         "SPARQL endpoint for RDF graphs",
		Version:       endpoint.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load(".env")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "triple store: memory, pebble or postgres")
	cmd.PersistentFlags().StringVar(&opts.syntax, "syntax", "", "syntax of the data files: turtle, nt or xml (default: guess from extension)")

	cmd.AddCommand(newServeCmd(opts), newQueryCmd(opts))
	return cmd
}

// loadConfig reads the layered configuration, applies the shared flags
// and data files from args, and initializes logging.
func (o *rootOptions) loadConfig(cmd *cobra.Command, files []string) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Graph.Store = o.store
	}
	if flags.Changed("syntax") {
		cfg.Graph.Syntax = o.syntax
	}
	if len(files) > 0 {
		cfg.Graph.Files = files
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbg, err := debug.Configure(cfg.Logging.Debug, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if len(dbg.Categories) > 0 {
		slog.Debug("debug categories enabled", "categories", dbg.Categories)
	}
	return cfg, nil
}
