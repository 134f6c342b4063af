package summary

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"

	"github.com/ArchitYad/Non-block-io-vs-block-io/dstat"
	"github.com/ArchitYad/Non-block-io-vs-block-io/wrk"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Loader locates the artifacts of each case in a directory and merges them
// into a Table.
type Loader struct {
	Cases  []Case
	Logger *zap.Logger
}

func NewLoader(cases []Case, logger *zap.Logger) *Loader {
	if len(cases) == 0 {
		cases = DefaultCases()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Cases: cases, Logger: logger}
}

// Load builds the table for dir. A case with neither artifact is left out;
// a case with only one of them gets NaN in the other one's columns. Failures
// other than a missing file are collected and returned next to the table,
// which holds every case that could be read.
func (l *Loader) Load(dir string) (*Table, error) {
	t := NewTable()
	var errs error

	for _, c := range l.Cases {
		log := l.Logger.With(zap.String("case", c.Label))

		wrkRes, err := loadWrk(resolve(dir, c.Wrk))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Label, err))
		}
		means, err := loadDstat(resolve(dir, c.Dstat))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Label, err))
		}

		if wrkRes == nil && means == nil {
			log.Debug("skipping case without artifacts",
				zap.String("wrk", c.Wrk), zap.String("dstat", c.Dstat))
			continue
		}
		if wrkRes == nil {
			log.Warn("wrk report missing, its columns are NaN", zap.String("wrk", c.Wrk))
		}
		if means == nil {
			log.Warn("dstat csv missing, its columns are NaN", zap.String("dstat", c.Dstat))
		}

		t.Rows = append(t.Rows, Row{
			Case:   c,
			Values: rowValues(wrkRes, means),
			Wrk:    wrkRes,
			Dstat:  means,
		})
	}

	l.Logger.Debug("summary loaded", zap.String("dir", dir), zap.Int("rows", t.Len()))
	return t, errs
}

func resolve(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func loadWrk(path string) (*wrk.Result, error) {
	if path == "" {
		return nil, nil
	}
	res, err := wrk.ParseFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func loadDstat(path string) (*dstat.Means, error) {
	if path == "" {
		return nil, nil
	}
	m, err := dstat.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func rowValues(w *wrk.Result, d *dstat.Means) []float64 {
	values := make([]float64, 0, len(Columns))
	if w != nil {
		values = append(values, w.Values()...)
	} else {
		for range wrk.Columns {
			values = append(values, math.NaN())
		}
	}
	for _, col := range dstat.DefaultColumns {
		if d != nil {
			values = append(values, d.Get(col))
		} else {
			values = append(values, math.NaN())
		}
	}
	return values
}
