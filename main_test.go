package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ArchitYad/Non-block-io-vs-block-io/config"
	"github.com/ArchitYad/Non-block-io-vs-block-io/internal/benchtest"
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setup points the global flags at a fresh artifact directory and restores
// them when the test ends.
func setup(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	artifacts := benchtest.WriteAll(t, t.TempDir())

	configPath = filepath.Join(t.TempDir(), "absent.yaml")
	dir = artifacts
	t.Cleanup(func() {
		configPath, dir = "", ""
		summaryFormat, summaryView = "text", ""
		plotOut, plotFormat, plotView, plotWatch = "", "", "", false
	})
	return artifacts
}

func TestSummaryCSV(t *testing.T) {
	setup(t)
	summaryFormat = "csv"

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runSummary(cmd, nil))

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, append([]string{"Case"}, summary.Columns...), records[0])
	assert.Equal(t, "Blocking 1KB", records[1][0])
	assert.Equal(t, "12000", records[1][1])
}

func TestSummaryView(t *testing.T) {
	setup(t)
	summaryFormat = "text"
	summaryView = "non-blocking"

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runSummary(cmd, nil))

	assert.Contains(t, out.String(), "Non-blocking 8KB")
	assert.NotContains(t, out.String(), "Blocking 1KB")
}

func TestSummaryBadInput(t *testing.T) {
	setup(t)
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	summaryFormat = "xml"
	assert.Error(t, runSummary(cmd, nil))

	summaryFormat = "text"
	summaryView = "upside-down"
	assert.Error(t, runSummary(cmd, nil))
}

func TestRenderCharts(t *testing.T) {
	setup(t)
	plotOut = filepath.Join(t.TempDir(), "out")
	plotFormat = "svg"
	plotView = "blocking"

	cfg, v, err := plotConfig()
	require.NoError(t, err)
	assert.Equal(t, summary.ViewBlocking, v)

	paths, err := renderCharts(context.Background(), cfg, v)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(plotOut, "blocking-wrk.svg"),
		filepath.Join(plotOut, "blocking-dstat.svg"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestPlotConfigRejectsFormat(t *testing.T) {
	setup(t)
	plotFormat = "gif"
	_, _, err := plotConfig()
	assert.Error(t, err)
}

func TestRunPlotFromConfigFile(t *testing.T) {
	artifacts := setup(t)
	out := filepath.Join(t.TempDir(), "charts")

	configPath = filepath.Join(t.TempDir(), "iobench.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"dir: "+artifacts+"\noutput: "+out+"\nformat: png\nview: both\n"), 0o644))
	dir = ""

	require.NoError(t, runPlot(&cobra.Command{}, nil))
	for _, name := range []string{"1kb-wrk.png", "8kb-dstat.png", "correlation.png"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestArtifactPaths(t *testing.T) {
	cfg := &config.Config{
		Dir: "runs",
		Cases: []summary.Case{
			{Label: "a", Wrk: "sub/a.txt", Dstat: "/data/a.csv"},
			{Label: "b", Wrk: "b.txt"},
		},
	}
	assert.Equal(t, []string{
		filepath.Join("runs", "sub", "a.txt"),
		"/data/a.csv",
		filepath.Join("runs", "b.txt"),
	}, artifactPaths(cfg))
}
