package mosaic

import "math"

// DefaultPadding is subtracted from every square side before scaling.
const DefaultPadding = 0.5

// Viewport is a drawable area in output units (pixels or points).
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// Transform maps layout units to viewport units.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Padding float64 `json:"padding"`
}

// Rect is an axis-aligned square in viewport units.
type Rect struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Fit computes the uniform scale min(width/side, height/side) and the
// offsets that center the scaled bounding square. A non-positive side
// yields a zero scale.
func (v Viewport) Fit(side float64) Transform {
	t := Transform{Padding: v.Padding}
	if !(side > 0) {
		t.OffsetX, t.OffsetY = v.Width/2, v.Height/2
		return t
	}
	t.Scale = math.Min(v.Width/side, v.Height/side)
	t.OffsetX = (v.Width - side*t.Scale) / 2
	t.OffsetY = (v.Height - side*t.Scale) / 2
	return t
}

// Rect maps a square at (x, y) with the given side.
func (t Transform) Rect(x, y, side float64) Rect {
	return Rect{
		X:    t.OffsetX + x*t.Scale,
		Y:    t.OffsetY + y*t.Scale,
		Size: math.Max(0, (side-t.Padding)*t.Scale),
	}
}

// Tile is a square ready to draw.
type Tile struct {
	Rect
	Index  int     `json:"index"`
	Bucket int     `json:"bucket"`
	Value  float64 `json:"value"`
}

// Frame binds a scene to a viewport.
type Frame struct {
	Scene     Scene     `json:"scene"`
	Viewport  Viewport  `json:"viewport"`
	Transform Transform `json:"transform"`
}

// NewFrame fits scene into vp.
func NewFrame(scene Scene, vp Viewport) Frame {
	return Frame{Scene: scene, Viewport: vp, Transform: vp.Fit(scene.Side)}
}

// Tiles maps every square of the scene to viewport coordinates.
func (f Frame) Tiles() []Tile {
	out := make([]Tile, len(f.Scene.Squares))
	for i, sq := range f.Scene.Squares {
		out[i] = Tile{
			Rect:   f.Transform.Rect(sq.X, sq.Y, sq.Side),
			Index:  sq.Index,
			Bucket: sq.Bucket,
			Value:  sq.Value,
		}
	}
	return out
}
