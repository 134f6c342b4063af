// Package summary merges wrk and dstat results of every benchmark case into
// one table and slices it into the views the charts are drawn from.
package summary

import (
	"math"
	"slices"

	"github.com/ArchitYad/Non-block-io-vs-block-io/dstat"
	"github.com/ArchitYad/Non-block-io-vs-block-io/wrk"
	"gonum.org/v1/gonum/stat"
)

// Columns is the column order of every Table.
var Columns = slices.Concat(wrk.Columns, dstat.DefaultColumns)

type Row struct {
	Case Case
	// Values is aligned with Table.Columns. Columns whose artifact is missing
	// hold NaN.
	Values []float64

	Wrk   *wrk.Result  // nil when the wrk report is missing
	Dstat *dstat.Means // nil when the dstat CSV is missing
}

type Table struct {
	Columns []string
	Rows    []Row
}

func NewTable() *Table {
	return &Table{Columns: slices.Clone(Columns)}
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Labels() []string {
	labels := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		labels[i] = r.Case.Label
	}
	return labels
}

func (t *Table) Row(label string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Case.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

// Value returns the cell at label and column, NaN when either is unknown.
func (t *Table) Value(label, column string) float64 {
	r, ok := t.Row(label)
	if !ok {
		return math.NaN()
	}
	i := slices.Index(t.Columns, column)
	if i < 0 || i >= len(r.Values) {
		return math.NaN()
	}
	return r.Values[i]
}

// Column returns one value per row, in row order.
func (t *Table) Column(column string) []float64 {
	out := make([]float64, len(t.Rows))
	i := slices.Index(t.Columns, column)
	for j, r := range t.Rows {
		if i < 0 || i >= len(r.Values) {
			out[j] = math.NaN()
			continue
		}
		out[j] = r.Values[i]
	}
	return out
}

// Select returns the rows named by labels, in that order. Labels that are
// not in the table are skipped.
func (t *Table) Select(labels ...string) *Table {
	sub := &Table{Columns: t.Columns}
	for _, label := range labels {
		if r, ok := t.Row(label); ok {
			sub.Rows = append(sub.Rows, r)
		}
	}
	return sub
}

// Matrix is a square matrix over a set of columns.
type Matrix struct {
	Columns []string
	Values  [][]float64
}

// Correlation computes the Pearson correlation of every pair of columns.
// Each pair only uses the rows where both cells are set; fewer than two such
// rows, or a column without variance, yields NaN.
func (t *Table) Correlation() Matrix {
	n := len(t.Columns)
	cols := make([][]float64, n)
	for i, c := range t.Columns {
		cols[i] = t.Column(c)
	}

	m := Matrix{Columns: slices.Clone(t.Columns), Values: make([][]float64, n)}
	for i := range n {
		m.Values[i] = make([]float64, n)
	}
	for i := range n {
		for j := i; j < n; j++ {
			c := pearson(cols[i], cols[j])
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

func pearson(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	c := stat.Correlation(xs, ys, nil)
	// rounding can push perfectly correlated columns just past 1
	return math.Max(-1, math.Min(1, c))
}
