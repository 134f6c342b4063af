package main

import (
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	summaryFormat string
	summaryView   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the merged wrk and dstat table",
	Long: `Prints one row per test case: requests/sec, transfer rate and average
latency from wrk, followed by the mean of each dstat metric. Values that
could not be read are shown as NaN.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loader := summary.NewLoader(cfg.Cases, logger)
	t, err := loader.Load(cfg.Dir)
	if err != nil {
		logger.Warn("some artifacts could not be read", zap.Error(err))
	}

	if summaryView != "" {
		v, err := summary.ParseView(summaryView)
		if err != nil {
			return err
		}
		layout := summary.Plan(t, loader.Cases, v)
		var labels []string
		for _, s := range layout.Sections {
			labels = append(labels, s.Table.Labels()...)
		}
		if missing := layout.Missing(loader.Cases); len(missing) > 0 {
			logger.Info("cases missing from view", zap.Stringer("view", v), zap.Strings("cases", missing))
		}
		t = t.Select(labels...)
	}

	return summary.Format(summaryFormat).Write(cmd.OutOrStdout(), t)
}
