package sink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	style styles.Style
	scale float64
}

// WithPNGStyle sets the fill style.
func WithPNGStyle(s styles.Style) PNGOption { return func(r *pngRenderer) { r.style = s } }

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// RenderPNG rasterizes the frame. The image is Width*scale by Height*scale
// pixels.
func RenderPNG(f mosaic.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{style: defaultStyle(), scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) {
		r.scale = 1
	}

	w := max(1, int(math.Ceil(f.Viewport.Width*r.scale)))
	h := max(1, int(math.Ceil(f.Viewport.Height*r.scale)))
	dc := gg.NewContext(w, h)
	dc.SetColor(r.style.Background())
	dc.Clear()

	dc.Scale(r.scale, r.scale)
	for _, t := range f.Tiles() {
		dc.SetColor(r.style.Fill(t.Bucket))
		dc.DrawRectangle(t.X, t.Y, t.Size, t.Size)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
