// Package config loads the YAML configuration of iobench.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"gopkg.in/yaml.v3"
)

// Formats are the static chart formats gonum/plot can write.
var Formats = []string{"png", "svg", "pdf", "eps", "jpg", "tif"}

type Config struct {
	// Dir holds the wrk and dstat artifacts.
	Dir    string         `yaml:"dir"`
	Listen string         `yaml:"listen"`
	Output string         `yaml:"output"`
	Format string         `yaml:"format"`
	View   string         `yaml:"view"`
	Cases  []summary.Case `yaml:"cases"`
}

func Default() *Config {
	return &Config{
		Dir:    ".",
		Listen: "127.0.0.1:8501",
		Output: "charts",
		Format: "png",
		View:   "both",
		Cases:  summary.DefaultCases(),
	}
}

// Load reads path over the defaults. An empty path, or one that does not
// exist, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Cases = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Cases) == 0 {
		cfg.Cases = summary.DefaultCases()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("dir must not be empty")
	}
	if !slices.Contains(Formats, strings.ToLower(c.Format)) {
		return fmt.Errorf("unknown chart format %q", c.Format)
	}
	if _, err := summary.ParseView(c.View); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Cases))
	for i, cs := range c.Cases {
		if cs.Label == "" {
			return fmt.Errorf("case %d: label must not be empty", i)
		}
		if seen[cs.Label] {
			return fmt.Errorf("case %q defined twice", cs.Label)
		}
		seen[cs.Label] = true
		if cs.Wrk == "" && cs.Dstat == "" {
			return fmt.Errorf("case %q: no wrk or dstat file", cs.Label)
		}
		if cs.Mode != summary.Blocking && cs.Mode != summary.NonBlocking {
			return fmt.Errorf("case %q: unknown mode %v", cs.Label, cs.Mode)
		}
	}
	return nil
}
