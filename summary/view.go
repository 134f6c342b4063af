package summary

import (
	"fmt"
	"slices"
	"strings"
)

// View is the slice of the table the user asked to compare.
type View int

const (
	ViewBlocking View = iota
	ViewNonBlocking
	ViewBoth
)

var Views = []View{ViewBlocking, ViewNonBlocking, ViewBoth}

func (v View) String() string {
	switch v {
	case ViewBlocking:
		return "Blocking"
	case ViewNonBlocking:
		return "Non-blocking"
	case ViewBoth:
		return "Both"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Slug is the lower case form used in URLs, flags and file names.
func (v View) Slug() string {
	return strings.ToLower(v.String())
}

func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "both" || s == "all" {
		return ViewBoth, nil
	}
	m, err := ParseMode(s)
	if err != nil {
		return 0, fmt.Errorf("unknown view %q, want blocking, non-blocking or both", s)
	}
	if m == NonBlocking {
		return ViewNonBlocking, nil
	}
	return ViewBlocking, nil
}

// Section is a group of rows drawn together, for instance both modes at 1KB.
type Section struct {
	Name    string // "Blocking", "1KB"
	Heading string
	Table   *Table
}

func (s Section) WrkTitle() string   { return s.Name + " - wrk Performance" }
func (s Section) DstatTitle() string { return s.Name + " - dstat Metrics" }

// Slug is the file name friendly form of Name.
func (s Section) Slug() string {
	return strings.ToLower(strings.ReplaceAll(s.Name, " ", "-"))
}

// Layout is everything drawn for a view.
type Layout struct {
	View     View
	Sections []Section
	// Correlation is set when the view also shows the correlation matrix of
	// the whole table.
	Correlation bool
}

const (
	CorrelationHeading = "Correlation Heatmap (All Tests)"
	CorrelationTitle   = "Correlation Matrix"
)

// ShowsCorrelation reports whether the correlation matrix of full is drawn.
// It needs at least two cases, a single one only yields NaN.
func (l Layout) ShowsCorrelation(full *Table) bool {
	return l.Correlation && full.Len() > 1
}

// Plan arranges t for view v. A mode view holds the cases of that mode; Both
// holds one section per payload size comparing the modes, plus the
// correlation matrix. Cases missing from t are dropped from their section.
func Plan(t *Table, cases []Case, v View) Layout {
	if len(cases) == 0 {
		cases = DefaultCases()
	}
	layout := Layout{View: v}

	switch v {
	case ViewBlocking, ViewNonBlocking:
		mode := Blocking
		if v == ViewNonBlocking {
			mode = NonBlocking
		}
		var labels []string
		for _, c := range cases {
			if c.Mode == mode {
				labels = append(labels, c.Label)
			}
		}
		layout.Sections = append(layout.Sections, Section{
			Name:    mode.String(),
			Heading: mode.String(),
			Table:   t.Select(labels...),
		})

	case ViewBoth:
		var sizes []string
		bySize := map[string][]string{}
		for _, c := range cases {
			if !slices.Contains(sizes, c.Size) {
				sizes = append(sizes, c.Size)
			}
			bySize[c.Size] = append(bySize[c.Size], c.Label)
		}
		for _, size := range sizes {
			layout.Sections = append(layout.Sections, Section{
				Name:    size,
				Heading: fmt.Sprintf("%s: %s vs %s", size, Blocking, NonBlocking),
				Table:   t.Select(bySize[size]...),
			})
		}
		layout.Correlation = true
	}
	return layout
}

// Missing returns the labels of cases a layout wanted but t did not have.
func (l Layout) Missing(cases []Case) []string {
	var present []string
	for _, s := range l.Sections {
		present = append(present, s.Table.Labels()...)
	}
	var missing []string
	for _, c := range cases {
		if l.wants(c) && !slices.Contains(present, c.Label) {
			missing = append(missing, c.Label)
		}
	}
	return missing
}

func (l Layout) wants(c Case) bool {
	switch l.View {
	case ViewBlocking:
		return c.Mode == Blocking
	case ViewNonBlocking:
		return c.Mode == NonBlocking
	}
	return true
}
