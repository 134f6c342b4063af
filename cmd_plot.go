package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArchitYad/Non-block-io-vs-block-io/benchplot"
	"github.com/ArchitYad/Non-block-io-vs-block-io/config"
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/ArchitYad/Non-block-io-vs-block-io/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	plotOut    string
	plotFormat string
	plotView   string
	plotWatch  bool
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the charts of a view as image files",
	Long: `Renders, for each section of the view, a wrk chart (requests/sec bars over
the average latency line) and a dstat chart (grouped bars of the mean
metrics). The both view adds a correlation heatmap over every case.

With --watch the charts are rendered again whenever one of the artifacts
changes, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func plotConfig() (*config.Config, summary.View, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	if plotOut != "" {
		cfg.Output = plotOut
	}
	if plotFormat != "" {
		cfg.Format = plotFormat
	}
	if plotView != "" {
		cfg.View = plotView
	}
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	v, err := summary.ParseView(cfg.View)
	if err != nil {
		return nil, 0, err
	}
	return cfg, v, nil
}

// renderCharts loads the artifacts and writes the charts of v.
func renderCharts(ctx context.Context, cfg *config.Config, v summary.View) ([]string, error) {
	loader := summary.NewLoader(cfg.Cases, logger)
	t, err := loader.Load(cfg.Dir)
	if err != nil {
		logger.Warn("some artifacts could not be read", zap.Error(err))
	}

	layout := summary.Plan(t, loader.Cases, v)
	if missing := layout.Missing(loader.Cases); len(missing) > 0 {
		logger.Info("cases missing from view", zap.Stringer("view", v), zap.Strings("cases", missing))
	}
	if t.Len() == 0 {
		logger.Warn("no benchmark artifacts found", zap.String("dir", cfg.Dir))
	}

	paths, err := benchplot.Render(ctx, t, layout, cfg.Output, cfg.Format)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		logger.Info("chart written", zap.String("path", p))
	}
	return paths, nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, v, err := plotConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := renderCharts(ctx, cfg, v); err != nil {
		return err
	}
	if !plotWatch {
		return nil
	}

	w := watch.New(cfg.Dir, artifactPaths(cfg), logger)
	return w.Run(ctx, func(ctx context.Context) error {
		_, err := renderCharts(ctx, cfg, v)
		return err
	})
}

// artifactPaths lists the path of every artifact of the configured cases.
func artifactPaths(cfg *config.Config) []string {
	var paths []string
	for _, c := range cfg.Cases {
		paths = append(paths, c.Paths(cfg.Dir)...)
	}
	return paths
}
