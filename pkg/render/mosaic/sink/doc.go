// Package sink writes mosaic frames to output formats.
//
// # Overview
//
// A "sink" transforms a [mosaic.Frame] into a final output format:
//
//   - SVG: one <rect> per tile, optional hover titles
//   - PNG: raster output drawn with gg
//   - PDF: vector output drawn with fpdf, optional caption and QR link
//   - HTML: absolutely positioned <div> tiles in a standalone page
//   - JSON: tile geometry for external tools
//   - ANSI: half-block terminal output for the interactive preview
//
// Every sink takes the same frame, so switching formats never changes the
// geometry. Colors come from a [styles.Style]; the default is solid orange.
//
//	frame := mosaic.NewFrame(scene, mosaic.Viewport{Width: 250, Height: 250, Padding: 0.5})
//	svg := sink.RenderSVG(frame, sink.WithStyle(styles.DefaultSpectrum()), sink.WithTooltips())
//	png, err := sink.RenderPNG(frame, sink.WithScale(2))
//
// [mosaic.Frame]: github.com/matzehuels/blockmondrian/pkg/render/mosaic.Frame
// [styles.Style]: github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles.Style
package sink
