package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/blockmondrian/pkg/cache"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/integrations/blockchaininfo"
	"github.com/matzehuels/blockmondrian/pkg/observability"
)

type fakeBlocks struct {
	calls int
}

func (f *fakeBlocks) FetchBlock(_ context.Context, height int64, _ bool) (*blockchaininfo.Block, error) {
	f.calls++
	if height == 404 {
		return nil, bmerrors.Wrap(bmerrors.ErrCodeNotFound, blockchaininfo.ErrNoBlocks, "block %d", height)
	}
	return &blockchaininfo.Block{
		Hash:   "00ab",
		Height: height,
		Transactions: []blockchaininfo.Transaction{
			{Hash: "a", Outputs: []blockchaininfo.Output{{Value: 312500000}}},
			{Hash: "b", Outputs: []blockchaininfo.Output{{Value: 5000000000}, {Value: 25000000}}},
		},
	}, nil
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"html", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !bmerrors.Is(err, bmerrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, bmerrors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg, PNG ,,pdf", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		got := ParseFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestValidateForLoad(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code bmerrors.Code
	}{
		{"no source", Options{}, bmerrors.ErrCodeInvalidInput},
		{"two sources", Options{Input: "x.txt", BlockHeight: Int64(1)}, bmerrors.ErrCodeInvalidInput},
		{"negative height", Options{BlockHeight: Int64(-1)}, bmerrors.ErrCodeInvalidHeight},
		{"values", Options{Values: []float64{}}, ""},
		{"genesis", Options{BlockHeight: Int64(0)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !bmerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestValidateForRenderDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %vx%v", opts.Width, opts.Height)
	}
	if opts.Padding == nil || *opts.Padding != 0.5 {
		t.Errorf("padding = %v, want 0.5", opts.Padding)
	}
	if opts.Style != DefaultStyle || len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("style %q formats %v", opts.Style, opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger should be defaulted")
	}
}

func TestValidateForRenderRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code bmerrors.Code
	}{
		{"style", Options{Style: "cubist"}, bmerrors.ErrCodeInvalidStyle},
		{"color", Options{Color: "notacolor"}, bmerrors.ErrCodeInvalidStyle},
		{"padding", Options{Padding: Float(1)}, bmerrors.ErrCodeInvalidDimensions},
		{"width", Options{Width: -5}, bmerrors.ErrCodeInvalidDimensions},
		{"format", Options{Formats: []string{"gif"}}, bmerrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateForRender(); !bmerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestZeroPaddingIsKept(t *testing.T) {
	opts := Options{Padding: Float(0)}
	opts.SetRenderDefaults()
	if vp := opts.Viewport(); vp.Padding != 0 {
		t.Errorf("Viewport().Padding = %v, want 0", vp.Padding)
	}
}

func TestGenerateLayout(t *testing.T) {
	values := []float64{50, 5, 0.5, 2e6}
	l := GenerateLayout(values, []float64{0.01, 0.1, 1, 10, 100, 1000, 10000, 100000, 1000000})

	wantBuckets := []int{5, 4, 3, 10}
	for i, b := range wantBuckets {
		if l.Buckets[i] != b {
			t.Errorf("bucket[%d] = %d, want %d", i, l.Buckets[i], b)
		}
	}
	// sqrt(25+16+9+100) = 12.25
	if l.Packing.Side != 13 {
		t.Errorf("side = %v, want 13", l.Packing.Side)
	}
	if got := l.Packing.Stats.Placed + l.Packing.Stats.Skipped; got != len(values) {
		t.Errorf("placed+skipped = %d, want %d", got, len(values))
	}
	hist := l.Histogram()
	if len(hist) != 10 || hist[9] != 1 || hist[4] != 1 {
		t.Errorf("Histogram() = %v", hist)
	}
}

func TestLayoutHashDistinguishesInputs(t *testing.T) {
	t1 := []float64{1, 10}
	a := layoutHash([]float64{1, 2}, t1)
	if a != layoutHash([]float64{1, 2}, t1) {
		t.Error("hash should be deterministic")
	}
	if a == layoutHash([]float64{1, 3}, t1) {
		t.Error("different values should hash differently")
	}
	if a == layoutHash([]float64{1, 2}, []float64{1, 20}) {
		t.Error("different thresholds should hash differently")
	}
}

func TestRenderLayoutAllFormats(t *testing.T) {
	// buckets 2, 2, 1, 1 tile a 4x4 square completely
	l := GenerateLayout([]float64{0.05, 0.05, 0.001, 0.001}, []float64{0.01, 0.1, 1, 10, 100})

	artifacts, err := RenderLayout(l, Options{
		Width:   200,
		Height:  100,
		Formats: []string{FormatSVG, FormatPNG, FormatPDF, FormatHTML, FormatJSON},
		Title:   "test block",
		Link:    "https://example.com/block/1",
	})
	if err != nil {
		t.Fatalf("RenderLayout: %v", err)
	}
	if len(artifacts) != 5 {
		t.Fatalf("got %d artifacts, want 5", len(artifacts))
	}
	if !bytes.HasPrefix(artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact should carry the PNG signature")
	}
	if !bytes.HasPrefix(artifacts[FormatPDF], []byte("%PDF")) {
		t.Error("pdf artifact should carry the PDF signature")
	}
	if !bytes.Contains(artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact should contain an svg element")
	}

	var doc map[string]any
	if err := json.Unmarshal(artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc["placed"] != float64(4) {
		t.Errorf("json placed = %v, want 4", doc["placed"])
	}
}

func TestExecuteValues(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Values:  []float64{50, 5, 0.5, 2e6},
		Formats: []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.Count != 4 {
		t.Errorf("Count = %d, want 4", result.Stats.Count)
	}
	if len(result.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(result.Artifacts))
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
	if result.Source != "values" {
		t.Errorf("Source = %q", result.Source)
	}
}

func TestExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil, nil)
	defer runner.Close()

	opts := Options{Values: []float64{1, 2, 3}, Formats: []string{FormatSVG}}
	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact should match the rendered one")
	}

	// A different viewport must not reuse the artifact.
	opts.Width = 300
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("third run cache info = %+v, want layout hit only", third.CacheInfo)
	}
}

func TestExecuteBlock(t *testing.T) {
	blocks := &fakeBlocks{}
	runner := NewRunner(nil, nil, nil, blocks)

	result, err := runner.Execute(context.Background(), Options{BlockHeight: Int64(840000)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if blocks.calls != 1 {
		t.Errorf("FetchBlock calls = %d, want 1", blocks.calls)
	}
	if len(result.Values) != 2 || result.Values[0] != 3.125 || result.Values[1] != 50.25 {
		t.Errorf("Values = %v", result.Values)
	}
	if result.Source != "block 840000" {
		t.Errorf("Source = %q", result.Source)
	}
}

func TestExecuteBlockErrors(t *testing.T) {
	_, err := NewRunner(nil, nil, nil, nil).Execute(context.Background(), Options{BlockHeight: Int64(1)})
	if !bmerrors.Is(err, bmerrors.ErrCodeUnsupported) {
		t.Errorf("no block source: err = %v, want UNSUPPORTED", err)
	}

	_, err = NewRunner(nil, nil, nil, &fakeBlocks{}).Execute(context.Background(), Options{BlockHeight: Int64(404)})
	if !bmerrors.Is(err, bmerrors.ErrCodeNotFound) {
		t.Errorf("missing block: err = %v, want NOT_FOUND", err)
	}
}

func TestExecuteInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1_tx_values.txt")
	if err := os.WriteFile(path, []byte("1\n\nabc\n2"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{Input: path})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.Count != 4 {
		t.Errorf("lenient Count = %d, want 4", result.Stats.Count)
	}

	_, err = runner.Execute(context.Background(), Options{Input: path, Strict: true})
	if !bmerrors.Is(err, bmerrors.ErrCodeInvalidInput) {
		t.Errorf("strict err = %v, want INVALID_INPUT", err)
	}
}

func TestFetchAndSave(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(nil, nil, nil, &fakeBlocks{})

	path, n, err := runner.FetchAndSave(context.Background(), 840000, dir, ExportText, false)
	if err != nil {
		t.Fatalf("FetchAndSave: %v", err)
	}
	if n != 2 || filepath.Base(path) != "840000_tx_values.txt" {
		t.Errorf("got %s (%d values)", path, n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "3.125\n50.25" {
		t.Errorf("file content = %q", data)
	}

	path, _, err = runner.FetchAndSave(context.Background(), 840000, dir, ExportXLSX, false)
	if err != nil {
		t.Fatalf("FetchAndSave xlsx: %v", err)
	}
	if filepath.Base(path) != "840000_tx_values.xlsx" {
		t.Errorf("xlsx path = %s", path)
	}

	if _, _, err := runner.FetchAndSave(context.Background(), 840000, dir, "csv", false); !bmerrors.Is(err, bmerrors.ErrCodeInvalidFormat) {
		t.Errorf("csv err = %v, want INVALID_FORMAT", err)
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	layouts []int
	renders [][]string
}

func (h *recordingPipelineHooks) OnLayoutComplete(_ context.Context, placed, _ int, _ time.Duration, _ error) {
	h.layouts = append(h.layouts, placed)
}

func (h *recordingPipelineHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.renders = append(h.renders, formats)
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	_, err := NewRunner(nil, nil, nil, nil).Execute(context.Background(), Options{Values: []float64{1}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(hooks.layouts) != 1 || hooks.layouts[0] != 1 {
		t.Errorf("layout events = %v", hooks.layouts)
	}
	if len(hooks.renders) != 1 || hooks.renders[0][0] != FormatSVG {
		t.Errorf("render events = %v", hooks.renders)
	}
}
