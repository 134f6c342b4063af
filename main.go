package main

import (
	"fmt"
	"os"

	"github.com/ArchitYad/Non-block-io-vs-block-io/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	dir        string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "iobench",
	Short: "Compare blocking and non-blocking I/O benchmark runs",
	Long: `iobench reads the wrk reports and dstat CSVs of the blocking and
non-blocking server runs, summarizes them in one table and charts them.

Artifacts are looked up in --dir (or the dir of the config file) under their
fixed names, e.g. block1kb.txt and block1kbop.csv.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "iobench.yaml", "config file, ignored when missing")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "directory holding the benchmark artifacts (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	summaryCmd.Flags().StringVar(&summaryFormat, "format", "text", "output format: text, csv or json")
	summaryCmd.Flags().StringVar(&summaryView, "view", "", "only print the cases of a view: blocking, non-blocking or both")

	plotCmd.Flags().StringVar(&plotOut, "out", "", "output directory (overrides config)")
	plotCmd.Flags().StringVar(&plotFormat, "format", "", "chart format: png, svg, pdf, eps, jpg or tif (overrides config)")
	plotCmd.Flags().StringVar(&plotView, "view", "", "view to render (overrides config)")
	plotCmd.Flags().BoolVar(&plotWatch, "watch", false, "render again whenever an artifact changes")

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (overrides config)")

	rootCmd.AddCommand(summaryCmd, plotCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.Dir = dir
	}
	return cfg, nil
}
