package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    styles.Style
	title    string
	tooltips bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithTitle(t string) SVGOption       { return func(r *svgRenderer) { r.title = t } }

// WithTooltips adds a <title> with the transaction index and amount to each
// tile. Browsers show it on hover.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = true } }

// RenderSVG draws the frame as a standalone SVG document.
func RenderSVG(f mosaic.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{style: defaultStyle()}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := f.Viewport.Width, f.Viewport.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		num(w), num(h), w, h)
	if r.title != "" {
		buf.WriteString("  <title>")
		_ = xml.EscapeText(&buf, []byte(r.title))
		buf.WriteString("</title>\n")
	}
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", styles.Hex(r.style.Background()))

	for _, t := range f.Tiles() {
		fmt.Fprintf(&buf, `  <rect id="tx-%d" class="tx bucket-%d" x="%s" y="%s" width="%s" height="%s" fill="%s"`,
			t.Index, t.Bucket, num(t.X), num(t.Y), num(t.Size), num(t.Size), styles.Hex(r.style.Fill(t.Bucket)))
		if !r.tooltips {
			buf.WriteString("/>\n")
			continue
		}
		buf.WriteString("><title>")
		_ = xml.EscapeText(&buf, []byte(tileLabel(t)))
		buf.WriteString("</title></rect>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func defaultStyle() styles.Style {
	s, _ := styles.Parse(styles.NameSolid, styles.DefaultColor)
	return s
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// formatAmount prints a BTC amount in its shortest exact form.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func tileLabel(t mosaic.Tile) string {
	return fmt.Sprintf("#%d: %s BTC (bucket %d)", t.Index, formatAmount(t.Value), t.Bucket)
}
