// Package chart renders bucket statistics as standalone HTML charts.
package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/blockmondrian/pkg/classify"
)

// SeriesName labels the bar series.
const SeriesName = "transactions"

// BucketLabels names each bucket of t by its upper bound, with the top
// bucket named by the last bound it exceeds.
func BucketLabels(t classify.Thresholds) []string {
	labels := make([]string, 0, t.Buckets())
	for _, th := range t {
		labels = append(labels, "≤ "+strconv.FormatFloat(th, 'f', -1, 64))
	}
	if len(t) > 0 {
		labels = append(labels, "> "+strconv.FormatFloat(t[len(t)-1], 'f', -1, 64))
	}
	return labels
}

// RenderHistogram writes a bar chart of counts, one bar per bucket of t.
func RenderHistogram(w io.Writer, title string, counts []int, t classify.Thresholds) error {
	labels := BucketLabels(t)
	if len(counts) != len(labels) {
		return fmt.Errorf("histogram has %d buckets, thresholds define %d", len(counts), len(labels))
	}

	total := 0
	items := make([]opts.BarData, len(counts))
	for i, c := range counts {
		items[i] = opts.BarData{Value: c}
		total += c
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d transactions by amount (BTC)", total)}),
	)
	bar.SetXAxis(labels).AddSeries(SeriesName, items)
	return bar.Render(w)
}
