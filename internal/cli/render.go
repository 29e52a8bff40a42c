package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockmondrian/pkg/pipeline"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
)

// renderFlags holds the flags shared by commands that lay out or draw a
// mosaic. Only flags the user actually set override the config file.
type renderFlags struct {
	formats    string
	width      float64
	height     float64
	padding    float64
	style      string
	color      string
	thresholds []float64
	title      string
	link       string
	strict     bool
	refresh    bool
}

// bindLayout registers the flags that affect classification and loading.
func (f *renderFlags) bindLayout(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&f.thresholds, "thresholds", nil, "ascending bucket thresholds in BTC (comma-separated)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject malformed lines in value files")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass the cached block")
}

// bindRender registers the drawing flags.
func (f *renderFlags) bindRender(cmd *cobra.Command) {
	f.bindLayout(cmd)
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, html, json (comma-separated)")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().Float64Var(&f.padding, "padding", mosaic.DefaultPadding, "gap between squares in layout units")
	cmd.Flags().StringVar(&f.style, "style", pipeline.DefaultStyle, "fill style: solid (default), spectrum")
	cmd.Flags().StringVar(&f.color, "color", "", "base color as a name or #rrggbb")
	cmd.Flags().StringVar(&f.title, "title", "", "title drawn above the mosaic")
	cmd.Flags().StringVar(&f.link, "link", "", "URL encoded as a QR code in PDF output")
}

// apply overlays changed flags onto opts.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("thresholds") {
		opts.Thresholds = f.thresholds
	}
	opts.Strict = f.strict
	opts.Refresh = f.refresh
	if changed("format") {
		opts.Formats = pipeline.ParseFormats(f.formats)
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("padding") {
		opts.Padding = pipeline.Float(f.padding)
	}
	if changed("style") {
		opts.Style = f.style
	}
	if changed("color") {
		opts.Color = f.color
	}
	opts.Title = f.title
	opts.Link = f.link
}

// options builds pipeline options for arg from config defaults and flags.
func (c *CLI) options(cmd *cobra.Command, f *renderFlags, arg string) (pipeline.Options, error) {
	opts := c.Config.PipelineOptions()
	f.apply(cmd, &opts)
	if err := setSource(&opts, arg); err != nil {
		return opts, err
	}
	opts.Logger = loggerFromContext(cmd.Context())
	return opts, nil
}

// renderCommand creates the render command for generating mosaics.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   renderFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render <file|height>",
		Short: "Render a block or values file as a mosaic",
		Long: `Render a block or a saved values file as a Mondrian mosaic.

The argument is a values file (.txt or .xlsx, as written by fetch) or a block
height to fetch. With a single format, -o names the output file and "-" writes
to stdout. With several formats, -o is the base path and each format gets its
own extension.`,
		Example: `  blockmondrian render 840000_tx_values.txt
  blockmondrian render 840000 -f svg,png --style spectrum
  blockmondrian render 840000 -f pdf --title "Block 840000" --link https://mempool.space/block/840000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	flags.bindRender(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender executes the pipeline stage by stage, keeping the spinner label
// in step, and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", describeArg(opts)))
	spinner.Start()

	values, err := runner.LoadValues(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}

	spinner.SetMessage(fmt.Sprintf("Packing %d squares...", len(values)))
	l, layoutHit, err := runner.LayoutWithCacheInfo(ctx, values, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}

	spinner.SetMessage("Rendering " + strings.Join(opts.Formats, ", ") + "...")
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := c.writeArtifacts(artifacts, opts, output)
	if err != nil {
		return err
	}

	stats := l.Stats()
	if output == "-" {
		loggerFromContext(ctx).Info("rendered", "placed", stats.Placed, "skipped", stats.Skipped)
		return nil
	}
	printSuccess("Rendered %s", describeArg(opts))
	for _, p := range paths {
		printFile(p)
	}
	printStats(stats, layoutHit && renderHit)
	if stats.Skipped > 0 {
		printWarning("%d squares found no free region and were left out", stats.Skipped)
	}
	return nil
}

// writeArtifacts writes each artifact and returns the written paths in
// format order. A single artifact with output "-" goes to stdout.
func (c *CLI) writeArtifacts(artifacts map[string][]byte, opts pipeline.Options, output string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	if len(formats) == 1 {
		path := output
		if path == "" {
			path = basePath("", opts) + "." + formats[0]
		}
		if err := c.writeFile(path, artifacts[formats[0]]); err != nil {
			return nil, err
		}
		if path == "-" {
			return nil, nil
		}
		return []string{path}, nil
	}

	base := basePath(output, opts)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if err := c.writeFile(path, artifacts[f]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (c *CLI) writeFile(path string, data []byte) error {
	out, err := openOutput(path, c.out)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// basePath derives the base output path. Without an explicit output it is
// the input file minus its extension, or block_{height} for fetched blocks.
// Known format extensions are stripped from an explicit output.
func basePath(output string, opts pipeline.Options) string {
	if output == "" {
		if opts.BlockHeight != nil {
			return fmt.Sprintf("block_%d", *opts.BlockHeight)
		}
		return strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// openOutput opens path for writing; "-" means stdout.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func describeArg(opts pipeline.Options) string {
	if opts.BlockHeight != nil {
		return fmt.Sprintf("block %d", *opts.BlockHeight)
	}
	return opts.Input
}
