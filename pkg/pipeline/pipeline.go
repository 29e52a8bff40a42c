// Package pipeline provides the core mosaic pipeline for blockmondrian.
//
// This package implements the complete load → layout → render pipeline used
// by the CLI, the terminal preview and the HTTP server, so every entry point
// classifies, packs and draws a block the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch a block's transaction values or import a values file
//  2. Layout: classify values into buckets and pack one square per value
//  3. Render: fit the packed square to a viewport and draw it (SVG, PNG,
//     PDF, HTML, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger, blocks)
//	height := int64(840000)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    BlockHeight: &height,
//	    Formats:     []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	values, err := runner.LoadValues(ctx, opts)
//	layout, err := runner.Layout(ctx, values, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockmondrian/pkg/cache"
	"github.com/matzehuels/blockmondrian/pkg/classify"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Preview, and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1024.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 1024.0

	// DefaultStyle is the default fill style.
	DefaultStyle = styles.NameSolid
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatHTML: true,
	FormatJSON: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatHTML: "text/html; charset=utf-8",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the mosaic pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source options: exactly one of Values, BlockHeight or Input.
	BlockHeight *int64    `json:"block_height,omitempty"`
	Input       string    `json:"input,omitempty"`
	Values      []float64 `json:"-"`
	Strict      bool      `json:"strict,omitempty"`  // reject malformed lines in Input
	Refresh     bool      `json:"refresh,omitempty"` // bypass the block cache

	// Layout options
	Thresholds []float64 `json:"thresholds,omitempty"`

	// Render options
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Padding *float64 `json:"padding,omitempty"` // nil means mosaic.DefaultPadding
	Style   string   `json:"style,omitempty"`
	Color   string   `json:"color,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Link    string   `json:"link,omitempty"` // encoded as a QR code in PDF output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Source describes where the values came from.
	Source string

	// Values are the per-transaction amounts in input order.
	Values []float64

	// Layout is the classified and packed block.
	Layout *Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Count      int
	Placed     int
	Skipped    int
	FillRatio  float64
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the packing came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// Float returns a pointer to v, for optional fields such as Padding.
func Float(v float64) *float64 { return &v }

// Int64 returns a pointer to v, for optional fields such as BlockHeight.
func Int64(v int64) *int64 { return &v }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return bmerrors.New(bmerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, html, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks.
// An empty string yields the default format.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{FormatSVG}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the source and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that exactly one value source is set.
func (o *Options) ValidateForLoad() error {
	sources := 0
	if o.Values != nil {
		sources++
	}
	if o.BlockHeight != nil {
		sources++
		if *o.BlockHeight < 0 {
			return bmerrors.New(bmerrors.ErrCodeInvalidHeight, "block height must be non-negative, got %d", *o.BlockHeight)
		}
	}
	if o.Input != "" {
		sources++
	}
	switch sources {
	case 0:
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "a block height, input file or values are required")
	case 1:
	default:
		return bmerrors.New(bmerrors.ErrCodeInvalidInput, "only one of block height, input file or values may be set")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if len(o.Thresholds) == 0 {
		o.Thresholds = append([]float64(nil), classify.DefaultThresholds...)
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return classify.Thresholds(o.Thresholds).Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Padding == nil {
		o.Padding = Float(mosaic.DefaultPadding)
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := bmerrors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := bmerrors.ValidatePadding(*o.Padding); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	_, err := o.ParseStyle()
	return err
}

// ParseStyle resolves Style and Color.
func (o *Options) ParseStyle() (styles.Style, error) {
	return styles.Parse(o.Style, o.Color)
}

// Viewport returns the drawing area for rendering.
func (o *Options) Viewport() mosaic.Viewport {
	pad := mosaic.DefaultPadding
	if o.Padding != nil {
		pad = *o.Padding
	}
	return mosaic.Viewport{Width: o.Width, Height: o.Height, Padding: pad}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Thresholds: o.Thresholds}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Style:   o.Style,
		Color:   o.Color,
		Width:   o.Width,
		Height:  o.Height,
		Padding: o.Viewport().Padding,
		Title:   o.Title,
		Link:    o.Link,
		Source:  o.describeSource(),
	}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// describeSource names the configured source for logs and exports.
func (o *Options) describeSource() string {
	switch {
	case o.BlockHeight != nil:
		return fmt.Sprintf("block %d", *o.BlockHeight)
	case o.Input != "":
		return o.Input
	default:
		return "values"
	}
}
