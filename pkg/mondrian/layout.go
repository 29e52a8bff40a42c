package mondrian

import (
	"math"

	"github.com/matzehuels/blockmondrian/pkg/errors"
)

// Slot is a free rectangular region available for placement.
type Slot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a coordinate in layout units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is the result of a successful [Layout.Place]. Position is the
// top-left corner of the square.
type Placement struct {
	Position Point   `json:"position"`
	Side     float64 `json:"side"`
}

// Layout tracks the free regions of a width x height rectangle.
type Layout struct {
	width  float64
	height float64
	slots  []Slot
}

// New creates a layout whose only free region is the whole rectangle.
// Width and height must be positive finite numbers.
func New(width, height float64) (*Layout, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	return &Layout{
		width:  width,
		height: height,
		slots:  []Slot{{X: 0, Y: 0, W: width, H: height}},
	}, nil
}

// Place puts a square of the given side into the first free region that can
// hold it. It reports false, without changing the layout, when no region fits
// or when size is not a positive finite number.
func (l *Layout) Place(size float64) (Placement, bool) {
	if !(size > 0) || math.IsInf(size, 1) {
		return Placement{}, false
	}

	for i, s := range l.slots {
		if s.W < size || s.H < size {
			continue
		}

		l.slots = append(l.slots[:i], l.slots[i+1:]...)
		if s.W > size {
			l.slots = append(l.slots, Slot{X: s.X + size, Y: s.Y, W: s.W - size, H: s.H})
		}
		if s.H > size {
			l.slots = append(l.slots, Slot{X: s.X, Y: s.Y + size, W: size, H: s.H - size})
		}
		return Placement{Position: Point{X: s.X, Y: s.Y}, Side: size}, true
	}
	return Placement{}, false
}

// Size returns the dimensions the layout was created with.
func (l *Layout) Size() (width, height float64) {
	return l.width, l.height
}

// Slots returns a copy of the free regions in scan order.
func (l *Layout) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}
