package pipeline

import (
	"bytes"

	"github.com/matzehuels/blockmondrian/pkg/cache"
	"github.com/matzehuels/blockmondrian/pkg/classify"
	bmio "github.com/matzehuels/blockmondrian/pkg/io"
	"github.com/matzehuels/blockmondrian/pkg/mondrian"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
)

// Layout is a classified and packed block, ready to be fitted to any
// viewport. It does not depend on render options.
type Layout struct {
	Values     []float64
	Buckets    []int
	Thresholds classify.Thresholds
	Packing    mondrian.Result
	Scene      mosaic.Scene

	// Hash identifies the layout inputs (values and thresholds) for
	// artifact cache keys.
	Hash string
}

// Histogram returns the number of values per bucket, index 0 being bucket 1.
func (l *Layout) Histogram() []int {
	return classify.Histogram(l.Buckets, l.Thresholds.Buckets())
}

// Frame fits the scene to vp.
func (l *Layout) Frame(vp mosaic.Viewport) mosaic.Frame {
	return mosaic.NewFrame(l.Scene, vp)
}

// GenerateLayout classifies values and packs one square per value in input
// order. Squares that find no free region are recorded as skipped.
func GenerateLayout(values []float64, thresholds classify.Thresholds) *Layout {
	buckets := thresholds.BucketAll(values)
	packing := mondrian.Pack(classify.Sizes(buckets))
	return newLayout(values, buckets, thresholds, packing)
}

func newLayout(values []float64, buckets []int, t classify.Thresholds, packing mondrian.Result) *Layout {
	return &Layout{
		Values:     values,
		Buckets:    buckets,
		Thresholds: t,
		Packing:    packing,
		Scene:      mosaic.NewScene(packing, buckets, values),
		Hash:       layoutHash(values, t),
	}
}

// layoutHash hashes the textual values form, which unlike JSON can carry NaN.
func layoutHash(values []float64, t classify.Thresholds) string {
	var buf bytes.Buffer
	_ = bmio.WriteValues(&buf, values)
	buf.WriteByte(0)
	_ = bmio.WriteValues(&buf, t)
	return cache.Hash(buf.Bytes())
}

// Stats reports the packing outcome. Timings are left zero.
func (l *Layout) Stats() Stats {
	return Stats{
		Count:     len(l.Values),
		Placed:    l.Packing.Stats.Placed,
		Skipped:   l.Packing.Stats.Skipped,
		FillRatio: l.Packing.Stats.FillRatio,
	}
}
