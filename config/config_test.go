package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iobench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, "png", cfg.Format)
	assert.Len(t, cfg.Cases, 4)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
dir: /var/bench
listen: :9000
format: svg
view: non-blocking
cases:
  - label: Blocking 64KB
    mode: blocking
    size: 64KB
    wrk: block64kb.txt
    dstat: block64kbop.csv
  - label: Non-blocking 64KB
    mode: nonblock
    size: 64KB
    wrk: nonblock64kb.txt
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/bench", cfg.Dir)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "charts", cfg.Output, "unset keys keep their default")
	assert.Equal(t, "svg", cfg.Format)
	require.Len(t, cfg.Cases, 2)
	assert.Equal(t, summary.NonBlocking, cfg.Cases[1].Mode)
	assert.Empty(t, cfg.Cases[1].Dstat)
}

func TestLoadKeepsDefaultCases(t *testing.T) {
	cfg, err := Load(writeConfig(t, "dir: results\n"))
	require.NoError(t, err)
	assert.Equal(t, summary.DefaultCases(), cfg.Cases)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "dir: [",
		"bad mode":     "cases:\n  - {label: a, mode: async, wrk: a.txt}\n",
		"bad format":   "format: gif\n",
		"bad view":     "view: sideways\n",
		"dup label":    "cases:\n  - {label: a, wrk: a.txt}\n  - {label: a, wrk: b.txt}\n",
		"no label":     "cases:\n  - {wrk: a.txt}\n",
		"no artifacts": "cases:\n  - {label: a}\n",
		"empty dir":    "dir: \"\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
