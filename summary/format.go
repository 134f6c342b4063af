package summary

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return humanize.CommafWithDigits(v, 2)
}

// WriteText renders t as a bordered terminal table.
func WriteText(w io.Writer, t *Table) error {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"Case"}, t.Columns...)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})
	for _, r := range t.Rows {
		cells := make([]string, 0, len(r.Values)+1)
		cells = append(cells, r.Case.Label)
		for _, v := range r.Values {
			cells = append(cells, formatValue(v))
		}
		tbl.Row(cells...)
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

// WriteCSV writes one record per row, with NaN cells left empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Case"}, t.Columns...)); err != nil {
		return err
	}
	for _, r := range t.Rows {
		record := make([]string, 0, len(r.Values)+1)
		record = append(record, r.Case.Label)
		for _, v := range r.Values {
			if math.IsNaN(v) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Label  string              `json:"label"`
	Mode   Mode                `json:"mode"`
	Size   string              `json:"size"`
	Values map[string]*float64 `json:"values"`
}

type jsonTable struct {
	Columns []string  `json:"columns"`
	Rows    []jsonRow `json:"rows"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON encodes NaN cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := jsonTable{Columns: t.Columns, Rows: make([]jsonRow, 0, len(t.Rows))}
	for _, r := range t.Rows {
		row := jsonRow{
			Label:  r.Case.Label,
			Mode:   r.Case.Mode,
			Size:   r.Case.Size,
			Values: make(map[string]*float64, len(t.Columns)),
		}
		for i, c := range t.Columns {
			if i < len(r.Values) {
				row.Values[c] = nullable(r.Values[i])
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return json.Marshal(out)
}

// MarshalJSON encodes NaN cells as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			values[i][j] = nullable(v)
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

func WriteJSON(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Format selects one of the table writers.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func (f Format) Write(w io.Writer, t *Table) error {
	switch f {
	case FormatText, "":
		return WriteText(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	}
	return fmt.Errorf("unknown output format %q", string(f))
}
