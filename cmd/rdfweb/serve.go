package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JervenBolleman/rdflib-web/pkg/config"
	transporthttp "github.com/JervenBolleman/rdflib-web/pkg/transport/http"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	c := &cobra.Command{
		Use:   "serve [FILE...]",
		Short: "Serve a SPARQL endpoint over the given RDF files",
		Long: `Serve a SPARQL endpoint at /sparql with a query form at /.

Without files and without configured data, the sample book database is
served.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg)
		},
	}

	c.Flags().IntVarP(&port, "port", "p", 5000, "listen port")
	return c
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg.Graph)
	if err != nil {
		return err
	}
	defer a.Close()

	adapter, err := a.adapter(cfg)
	if err != nil {
		return err
	}

	srv := transporthttp.NewServer(adapter,
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
	)
	return srv.ListenAndServeContext(ctx)
}
