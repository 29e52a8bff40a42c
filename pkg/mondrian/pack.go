package mondrian

import "math"

// Stats summarizes a [Pack] run.
type Stats struct {
	Placed     int     `json:"placed"`
	Skipped    int     `json:"skipped"`
	FilledArea float64 `json:"filled_area"`
	FillRatio  float64 `json:"fill_ratio"`
}

// Result is the outcome of packing a sequence of squares.
//
// Placements is aligned index-for-index with the input sizes; an entry is
// nil when no free region could hold that square.
type Result struct {
	Side       float64      `json:"side"`
	Placements []*Placement `json:"placements"`
	Stats      Stats        `json:"stats"`
}

// BoundingSide returns ceil(sqrt(sum(size^2))), the side of the smallest
// integer square whose area covers all squares.
func BoundingSide(sizes []float64) float64 {
	var area float64
	for _, s := range sizes {
		area += s * s
	}
	return math.Ceil(math.Sqrt(area))
}

// Pack places sizes in order into a square of side [BoundingSide](sizes).
// An empty input, or one whose bounding side is zero, yields a result with
// side 0 and no placements.
func Pack(sizes []float64) Result {
	res := Result{Placements: make([]*Placement, len(sizes))}
	side := BoundingSide(sizes)

	l, err := New(side, side)
	if err != nil {
		res.Stats.Skipped = len(sizes)
		return res
	}
	res.Side = side

	for i, s := range sizes {
		p, ok := l.Place(s)
		if !ok {
			res.Stats.Skipped++
			continue
		}
		res.Placements[i] = &p
		res.Stats.Placed++
		res.Stats.FilledArea += s * s
	}
	res.Stats.FillRatio = res.Stats.FilledArea / (side * side)
	return res
}
