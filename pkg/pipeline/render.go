package pipeline

import (
	"fmt"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/sink"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// RenderLayout fits l to the options' viewport and draws every requested
// format. It never touches a cache.
func RenderLayout(l *Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	style, err := opts.ParseStyle()
	if err != nil {
		return nil, err
	}

	frame := l.Frame(opts.Viewport())
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(frame, buildSVGOptions(style, opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(frame, sink.WithPNGStyle(style))
		case FormatPDF:
			data, err = sink.RenderPDF(frame, buildPDFOptions(style, opts)...)
		case FormatHTML:
			data = sink.RenderHTML(frame, sink.WithHTMLStyle(style), sink.WithHTMLTitle(opts.Title))
		case FormatJSON:
			data, err = sink.RenderJSON(frame, sink.WithJSONStyle(style), sink.WithJSONSource(opts.describeSource()))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(style styles.Style, opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithStyle(style), sink.WithTooltips()}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}

func buildPDFOptions(style styles.Style, opts Options) []sink.PDFOption {
	pdfOpts := []sink.PDFOption{sink.WithPDFStyle(style)}
	if opts.Title != "" {
		pdfOpts = append(pdfOpts, sink.WithCaption(opts.Title))
	}
	if opts.Link != "" {
		pdfOpts = append(pdfOpts, sink.WithLink(opts.Link))
	}
	return pdfOpts
}
