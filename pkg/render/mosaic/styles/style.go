// Package styles provides fill colors for mosaic tiles.
//
// Two styles are available:
//
//   - [Solid]: every tile uses the same color (orange by default)
//   - [Spectrum]: tiles are shaded by bucket along a light-to-dark ramp
//
// Colors are accepted as SVG/CSS color names or hex strings (#rgb, #rrggbb)
// and normalized by [ParseColor].
package styles

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/blockmondrian/pkg/errors"
)

// Style names accepted by [Parse].
const (
	NameSolid    = "solid"
	NameSpectrum = "spectrum"
)

// DefaultColor is the fill of the solid style.
const DefaultColor = "orange"

// Style decides the fill of each tile.
type Style interface {
	// Name returns the identifier used on the command line.
	Name() string
	// Fill returns the color for a tile in the given bucket.
	Fill(bucket int) color.RGBA
	// Background returns the canvas color.
	Background() color.RGBA
}

// Parse returns the style with the given name. base overrides the style's
// main color when non-empty.
func Parse(name, base string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameSolid:
		if base == "" {
			base = DefaultColor
		}
		c, err := ParseColor(base)
		if err != nil {
			return nil, err
		}
		return Solid{Color: c}, nil
	case NameSpectrum:
		s := DefaultSpectrum()
		if base != "" {
			c, err := ParseColor(base)
			if err != nil {
				return nil, err
			}
			s.To = c
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (want %s or %s)", name, NameSolid, NameSpectrum)
}

// ParseColor resolves a color name or hex string.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
		}
		if c, err := colorful.Hex(s); err == nil {
			r, g, b := c.RGB255()
			return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
		}
	}
	return color.RGBA{}, errors.New(errors.ErrCodeInvalidStyle, "invalid color %q", s)
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Solid fills every tile with one color.
type Solid struct {
	Color color.RGBA
}

func (s Solid) Name() string           { return NameSolid }
func (s Solid) Fill(int) color.RGBA    { return s.Color }
func (s Solid) Background() color.RGBA { return colornames.White }
