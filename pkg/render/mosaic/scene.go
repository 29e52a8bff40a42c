package mosaic

import (
	"github.com/matzehuels/blockmondrian/pkg/mondrian"
)

// Square is a placed transaction in layout units.
type Square struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Side   float64 `json:"side"`
	Bucket int     `json:"bucket"`
	Value  float64 `json:"value"`
}

// Scene is the drawable content of a packed block.
type Scene struct {
	Side    float64  `json:"side"`
	Squares []Square `json:"squares"`
	Total   int      `json:"total"`
}

// NewScene collects the placed entries of res. buckets and values are
// aligned with res.Placements; either may be shorter, in which case the
// missing fields stay zero.
func NewScene(res mondrian.Result, buckets []int, values []float64) Scene {
	s := Scene{
		Side:    res.Side,
		Squares: make([]Square, 0, res.Stats.Placed),
		Total:   len(res.Placements),
	}
	for i, p := range res.Placements {
		if p == nil {
			continue
		}
		sq := Square{Index: i, X: p.Position.X, Y: p.Position.Y, Side: p.Side}
		if i < len(buckets) {
			sq.Bucket = buckets[i]
		}
		if i < len(values) {
			sq.Value = values[i]
		}
		s.Squares = append(s.Squares, sq)
	}
	return s
}

// Skipped returns the number of entries that were not placed.
func (s Scene) Skipped() int {
	return s.Total - len(s.Squares)
}
