package styles

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Spectrum shades tiles from From (bucket 1) to To (bucket Buckets) in HCL
// space, so small transactions read light and large ones dark.
type Spectrum struct {
	From    color.RGBA
	To      color.RGBA
	Buckets int
}

// DefaultSpectrum ramps from pale yellow to dark red over ten buckets.
func DefaultSpectrum() Spectrum {
	return Spectrum{
		From:    color.RGBA{R: 0xfe, G: 0xf3, B: 0xc7, A: 0xff},
		To:      color.RGBA{R: 0x7f, G: 0x1d, B: 0x1d, A: 0xff},
		Buckets: 10,
	}
}

func (s Spectrum) Name() string           { return NameSpectrum }
func (s Spectrum) Background() color.RGBA { return colornames.White }

// Fill interpolates the ramp for bucket, clamped to [1, Buckets].
func (s Spectrum) Fill(bucket int) color.RGBA {
	n := s.Buckets
	if n < 2 {
		return s.To
	}
	bucket = min(max(bucket, 1), n)
	t := float64(bucket-1) / float64(n-1)

	from, _ := colorful.MakeColor(s.From)
	to, _ := colorful.MakeColor(s.To)
	r, g, b := from.BlendHcl(to, t).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
