package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockmondrian/pkg/cache"
	"github.com/matzehuels/blockmondrian/pkg/classify"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	bmio "github.com/matzehuels/blockmondrian/pkg/io"
	"github.com/matzehuels/blockmondrian/pkg/mondrian"
	"github.com/matzehuels/blockmondrian/pkg/observability"
)

// Export formats for [Runner.FetchAndSave].
const (
	ExportText = "txt"
	ExportXLSX = "xlsx"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, preview and server all use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, logger and block source.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Blocks BlockSource
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// blocks may be nil when only files or in-memory values are loaded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, blocks BlockSource) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Blocks: blocks,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Source: opts.describeSource()}

	// Stage 1: Load
	loadStart := time.Now()
	values, err := r.LoadValues(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Values = values
	loadTime := time.Since(loadStart)

	r.Logger.Info("loaded values",
		"source", result.Source,
		"count", len(values),
		"duration", loadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, values, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats = l.Stats()
	result.Stats.LoadTime = loadTime
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("packed layout",
		"placed", result.Stats.Placed,
		"skipped", result.Stats.Skipped,
		"side", l.Packing.Side,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadValues resolves the options' source into transaction values: an
// in-memory slice, a block fetched from [Runner.Blocks], or an imported file.
func (r *Runner) LoadValues(ctx context.Context, opts Options) ([]float64, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	return loadValues(ctx, r.Blocks, opts)
}

// LayoutWithCacheInfo classifies and packs values with caching and
// returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, values []float64, opts Options) (*Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	thresholds := classify.Thresholds(opts.Thresholds)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(values))
	start := time.Now()

	hash := layoutHash(values, thresholds)
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	buckets := thresholds.BucketAll(values)

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var packing mondrian.Result
		if json.Unmarshal(data, &packing) == nil && len(packing.Placements) == len(values) {
			observability.Cache().OnCacheHit(ctx, "layout")
			l := newLayout(values, buckets, thresholds, packing)
			hooks.OnLayoutComplete(ctx, packing.Stats.Placed, packing.Stats.Skipped, time.Since(start), nil)
			return l, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	packing := mondrian.Pack(classify.Sizes(buckets))
	l := newLayout(values, buckets, thresholds, packing)
	hooks.OnLayoutComplete(ctx, packing.Stats.Placed, packing.Stats.Skipped, time.Since(start), nil)

	if packing.Stats.Skipped > 0 {
		opts.Logger.Debug("squares without a free region", "skipped", packing.Stats.Skipped)
	}

	// Cache the result
	if data, err := json.Marshal(packing); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, values []float64, opts Options) (*Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, values, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(l.Hash, opts.ArtifactKeyOpts(format))
		data, ok, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := RenderLayout(l, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(l.Hash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// FetchAndSave fetches the block at height and writes its values to dir as
// {height}_tx_values.txt, or .xlsx when format is [ExportXLSX]. It returns
// the written path and the number of values.
func (r *Runner) FetchAndSave(ctx context.Context, height int64, dir, format string, refresh bool) (string, int, error) {
	values, err := r.LoadValues(ctx, Options{BlockHeight: &height, Refresh: refresh})
	if err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, bmio.ValuesFilename(height))
	switch format {
	case "", ExportText:
		err = bmio.ExportValues(path, values)
	case ExportXLSX:
		path = path[:len(path)-len(filepath.Ext(path))] + ".xlsx"
		err = bmio.ExportValuesXLSX(path, values)
	default:
		return "", 0, bmerrors.New(bmerrors.ErrCodeInvalidFormat, "invalid export format: %q (must be txt or xlsx)", format)
	}
	if err != nil {
		return "", 0, err
	}

	r.Logger.Info("saved transaction values", "height", height, "count", len(values), "path", path)
	return path, len(values), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
