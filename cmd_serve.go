package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArchitYad/Non-block-io-vs-block-io/dashboard"
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard",
	Long: `Serves the dashboard: a view selector (Blocking, Non-blocking, Both) over
interactive wrk and dstat charts. Artifacts are read again on every page
load. JSON is available under /api/summary and /api/correlation.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loader := summary.NewLoader(cfg.Cases, logger)
	return dashboard.NewServer(cfg.Dir, loader, summary.ViewBlocking, logger).Run(ctx, cfg.Listen)
}
