// Package report renders the comparable-price chart for an item.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"pricescout-engine/internal/store"
)

// RenderPriceChart writes an HTML bar chart of the priced sources plus
// min/avg/max reference lines. Sources without a price are skipped.
func RenderPriceChart(w io.Writer, itemTitle string, sources []store.SourceRecord, agg store.PriceAggregate) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Comparable prices: " + itemTitle,
			Subtitle: fmt.Sprintf("%d priced listings", agg.Count),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	var x []string
	var y []opts.BarData
	for _, s := range sources {
		if s.Price == nil {
			continue
		}
		label := s.Title
		if r := []rune(label); len(r) > 24 {
			label = string(r[:24]) + "…"
		}
		x = append(x, label)
		y = append(y, opts.BarData{Value: *s.Price})
	}

	bar.SetXAxis(x).AddSeries("Price", y)

	if agg.Count > 0 {
		bar.SetSeriesOptions(
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "Min", YAxis: agg.Min},
				opts.MarkLineNameYAxisItem{Name: "Avg", YAxis: store.Round2(agg.Avg)},
				opts.MarkLineNameYAxisItem{Name: "Max", YAxis: agg.Max},
			),
		)
	}

	return bar.Render(w)
}
