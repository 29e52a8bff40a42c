package sink

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// TerminalViewport returns a viewport for a cols x rows terminal area.
// Each cell holds two vertically stacked pixels, drawn with half blocks.
func TerminalViewport(cols, rows int, padding float64) mosaic.Viewport {
	return mosaic.Viewport{Width: float64(cols), Height: float64(2 * rows), Padding: padding}
}

// ANSIOption configures terminal rendering.
type ANSIOption func(*ansiRenderer)

type ansiRenderer struct {
	style styles.Style
}

func WithANSIStyle(s styles.Style) ANSIOption { return func(r *ansiRenderer) { r.style = s } }

// RenderANSI draws a frame built from [TerminalViewport] as lines of
// colored half-block characters. Every tile covers at least one pixel so
// small squares stay visible at low resolution.
func RenderANSI(f mosaic.Frame, opts ...ANSIOption) string {
	r := ansiRenderer{style: defaultStyle()}
	for _, opt := range opts {
		opt(&r)
	}

	cols := int(f.Viewport.Width)
	rows := int(f.Viewport.Height) / 2
	if cols <= 0 || rows <= 0 {
		return ""
	}

	px := make([][]*color.RGBA, rows*2)
	for i := range px {
		px[i] = make([]*color.RGBA, cols)
	}
	for _, t := range f.Tiles() {
		c := r.style.Fill(t.Bucket)
		x0, x1 := pixelSpan(t.X, t.Size, cols)
		y0, y1 := pixelSpan(t.Y, t.Size, rows*2)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				px[y][x] = &c
			}
		}
	}

	cache := map[[2]string]lipgloss.Style{}
	cell := func(fg, bg string, glyph string) string {
		key := [2]string{fg, bg}
		s, ok := cache[key]
		if !ok {
			s = lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
			if bg != "" {
				s = s.Background(lipgloss.Color(bg))
			}
			cache[key] = s
		}
		return s.Render(glyph)
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top, bottom := px[2*row][x], px[2*row+1][x]
			switch {
			case top == nil && bottom == nil:
				b.WriteByte(' ')
			case bottom == nil:
				b.WriteString(cell(styles.Hex(*top), "", "▀"))
			case top == nil:
				b.WriteString(cell(styles.Hex(*bottom), "", "▄"))
			default:
				b.WriteString(cell(styles.Hex(*top), styles.Hex(*bottom), "▀"))
			}
		}
	}
	return b.String()
}

// pixelSpan returns the half-open pixel range covered by [start, start+size),
// widened to one pixel and clipped to [0, limit).
func pixelSpan(start, size float64, limit int) (int, int) {
	lo := int(math.Floor(start))
	hi := int(math.Round(start + size))
	if hi <= lo {
		hi = lo + 1
	}
	return max(0, min(lo, limit)), max(0, min(hi, limit))
}
