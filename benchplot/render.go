package benchplot

import (
	"context"

	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"golang.org/x/sync/errgroup"
)

// Charts builds every chart of a layout. Sections without rows are skipped.
// full is the whole table, used for the correlation matrix.
func Charts(full *summary.Table, layout summary.Layout) ([]*Chart, error) {
	var charts []*Chart
	for _, s := range layout.Sections {
		if s.Table.Len() == 0 {
			continue
		}
		w, err := WrkChart(s.Table, s.Slug()+"-wrk", s.WrkTitle())
		if err != nil {
			return nil, err
		}
		d, err := DstatChart(s.Table, s.Slug()+"-dstat", s.DstatTitle())
		if err != nil {
			return nil, err
		}
		charts = append(charts, w, d)
	}
	if layout.ShowsCorrelation(full) {
		c, err := CorrelationChart(full.Correlation(), "correlation")
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}

// Render writes the charts of layout into dir, concurrently, and returns the
// paths written in chart order.
func Render(ctx context.Context, full *summary.Table, layout summary.Layout, dir, format string) ([]string, error) {
	charts, err := Charts(full, layout)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(charts))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range charts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := c.Save(dir, format)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
