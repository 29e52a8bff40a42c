package sink

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// Caption band below the mosaic, in points.
const (
	pdfFooterHeight = 48.0
	pdfFooterMargin = 8.0
	pdfQRSize       = pdfFooterHeight - 2*pdfFooterMargin
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	style   styles.Style
	caption string
	link    string
}

// WithPDFStyle sets the fill style.
func WithPDFStyle(s styles.Style) PDFOption { return func(r *pdfRenderer) { r.style = s } }

// WithCaption prints a line of text in a band below the mosaic.
func WithCaption(s string) PDFOption { return func(r *pdfRenderer) { r.caption = s } }

// WithLink adds a QR code encoding url to the caption band, typically a
// block explorer page for the rendered block.
func WithLink(url string) PDFOption { return func(r *pdfRenderer) { r.link = url } }

// RenderPDF draws the frame on a single page sized to the viewport, in
// points. A caption band is appended when a caption or link is set.
func RenderPDF(f mosaic.Frame, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{style: defaultStyle()}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := f.Viewport.Width, f.Viewport.Height
	footer := 0.0
	if r.caption != "" || r.link != "" {
		footer = pdfFooterHeight
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h + footer},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	bg := r.style.Background()
	pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	pdf.Rect(0, 0, w, h+footer, "F")

	for _, t := range f.Tiles() {
		c := r.style.Fill(t.Bucket)
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Rect(t.X, t.Y, t.Size, t.Size, "F")
	}

	if footer > 0 {
		if err := r.drawFooter(pdf, w, h); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r pdfRenderer) drawFooter(pdf *fpdf.Fpdf, w, top float64) error {
	textW := w - 2*pdfFooterMargin
	if r.link != "" {
		png, err := qrcode.Encode(r.link, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("generate QR code: %w", err)
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("link", opts, bytes.NewReader(png))
		pdf.ImageOptions("link", w-pdfFooterMargin-pdfQRSize, top+pdfFooterMargin, pdfQRSize, pdfQRSize, false, opts, 0, r.link)
		textW -= pdfQRSize + pdfFooterMargin
	}

	if r.caption != "" && textW > 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.SetXY(pdfFooterMargin, top+pdfFooterMargin)
		pdf.CellFormat(textW, pdfQRSize, r.caption, "", 0, "LM", false, 0, "")
	}
	return pdf.Error()
}
