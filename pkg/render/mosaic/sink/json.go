package sink

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style  styles.Style
	source string
}

// WithJSONStyle records the style and resolves tile fills with it.
func WithJSONStyle(s styles.Style) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONSource records where the values came from (a block height or file).
func WithJSONSource(s string) JSONOption { return func(r *jsonRenderer) { r.source = s } }

type jsonOutput struct {
	Source  string     `json:"source,omitempty"`
	Style   string     `json:"style"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Padding float64    `json:"padding"`
	Side    float64    `json:"side"`
	Scale   float64    `json:"scale"`
	Total   int        `json:"total"`
	Placed  int        `json:"placed"`
	Tiles   []jsonTile `json:"tiles"`
}

type jsonTile struct {
	Index  int      `json:"index"`
	Bucket int      `json:"bucket"`
	Value  *float64 `json:"value,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Size   float64  `json:"size"`
	Fill   string   `json:"fill"`
}

// RenderJSON exports the frame geometry. Amounts that are not finite
// numbers are omitted since JSON cannot represent them.
func RenderJSON(f mosaic.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{style: defaultStyle()}
	for _, opt := range opts {
		opt(&r)
	}

	tiles := f.Tiles()
	out := jsonOutput{
		Source:  r.source,
		Style:   r.style.Name(),
		Width:   f.Viewport.Width,
		Height:  f.Viewport.Height,
		Padding: f.Viewport.Padding,
		Side:    f.Scene.Side,
		Scale:   f.Transform.Scale,
		Total:   f.Scene.Total,
		Placed:  len(tiles),
		Tiles:   make([]jsonTile, len(tiles)),
	}
	for i, t := range tiles {
		jt := jsonTile{
			Index:  t.Index,
			Bucket: t.Bucket,
			X:      t.X,
			Y:      t.Y,
			Size:   t.Size,
			Fill:   styles.Hex(r.style.Fill(t.Bucket)),
		}
		if !math.IsNaN(t.Value) && !math.IsInf(t.Value, 0) {
			v := t.Value
			jt.Value = &v
		}
		out.Tiles[i] = jt
	}
	return json.MarshalIndent(out, "", "  ")
}
