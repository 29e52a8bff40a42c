package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

const htmlPageCSS = `
    body { margin: 0; font-family: system-ui, sans-serif; }
    .mosaic { position: relative; margin: 16px auto; }
    .tx { position: absolute; }
    .tx:hover { outline: 1px solid #333; }`

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	style styles.Style
	title string
}

func WithHTMLStyle(s styles.Style) HTMLOption { return func(r *htmlRenderer) { r.style = s } }
func WithHTMLTitle(t string) HTMLOption       { return func(r *htmlRenderer) { r.title = t } }

// RenderHTML draws the frame as absolutely positioned <div> elements inside
// a standalone HTML page.
func RenderHTML(f mosaic.Frame, opts ...HTMLOption) []byte {
	r := htmlRenderer{style: defaultStyle(), title: "Block mosaic"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n<style>%s\n</style>\n</head>\n<body>\n", html.EscapeString(r.title), htmlPageCSS)
	fmt.Fprintf(&buf, `<div class="mosaic" style="width:%spx;height:%spx;background:%s">`+"\n",
		num(f.Viewport.Width), num(f.Viewport.Height), styles.Hex(r.style.Background()))

	for _, t := range f.Tiles() {
		fmt.Fprintf(&buf, `  <div class="tx bucket-%d" title="%s" style="left:%spx;top:%spx;width:%spx;height:%spx;background:%s"></div>`+"\n",
			t.Bucket, html.EscapeString(tileLabel(t)), num(t.X), num(t.Y), num(t.Size), num(t.Size), styles.Hex(r.style.Fill(t.Bucket)))
	}

	buf.WriteString("</div>\n</body>\n</html>\n")
	return buf.Bytes()
}
