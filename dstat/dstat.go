// Package dstat averages the samples of a dstat (or dool) CSV output file.
package dstat

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// DefaultColumns are the cpu, disk and system columns reported per case.
var DefaultColumns = []string{"usr", "sys", "idl", "writ", "int", "csw"}

// Means holds the per-column average of a run.
type Means struct {
	// Columns lists the requested columns found in the file, in request order.
	Columns []string
	Values  map[string]float64
	Samples int
}

// Get returns the mean of column, or NaN when the file did not carry it.
func (m Means) Get(column string) float64 {
	if v, ok := m.Values[column]; ok {
		return v
	}
	return math.NaN()
}

func LoadFile(path string, columns ...string) (Means, error) {
	f, err := os.Open(path)
	if err != nil {
		return Means{}, err
	}
	defer f.Close()

	m, err := Load(f, columns...)
	if err != nil {
		return Means{}, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Load reads a dstat CSV and averages the given columns, DefaultColumns when
// none are given. The preamble and the column group row are skipped: the
// header is the first row naming one of the columns. Empty or non-numeric
// cells are left out of a column's mean. A file naming none of the columns
// yields empty Means, so every Get is NaN.
func Load(r io.Reader, columns ...string) (Means, error) {
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var index map[string]int
	samples := make(map[string][]float64, len(columns))
	rows := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Means{}, err
		}

		if index == nil {
			index = headerIndex(record, columns)
			continue
		}

		rows++
		for col, i := range index {
			if i >= len(record) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			samples[col] = append(samples[col], v)
		}
	}
	m := Means{Values: make(map[string]float64, len(index)), Samples: rows}
	for _, col := range columns {
		if _, ok := index[col]; !ok || slices.Contains(m.Columns, col) {
			continue
		}
		m.Columns = append(m.Columns, col)
		if xs := samples[col]; len(xs) > 0 {
			m.Values[col] = stat.Mean(xs, nil)
		} else {
			m.Values[col] = math.NaN()
		}
	}
	return m, nil
}

// headerIndex maps each requested column to its first position in record. It
// returns nil when record names none of them.
func headerIndex(record, columns []string) map[string]int {
	var index map[string]int
	for i, cell := range record {
		name := strings.TrimSpace(cell)
		if !slices.Contains(columns, name) {
			continue
		}
		if index == nil {
			index = make(map[string]int)
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}
