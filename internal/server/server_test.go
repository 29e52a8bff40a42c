package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/blockmondrian/pkg/config"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/integrations/blockchaininfo"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
)

const fourSquares = "0.05\n0.05\n0.001\n0.001"

type fakeBlocks struct{}

func (fakeBlocks) FetchBlock(_ context.Context, height int64, _ bool) (*blockchaininfo.Block, error) {
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

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger, fakeBlocks{})
	return New(runner, cfg, logger).Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestIndexServesUploadForm(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)
	assert.Contains(t, rec.Body.String(), `name="file"`)
}

func TestRenderUploadRawBody(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/render?format=svg", strings.NewReader(fourSquares))
	req.Header.Set("Content-Type", "text/plain")
	rec := do(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Equal(t, "4", rec.Header().Get("X-Placed"))
	assert.Equal(t, "0", rec.Header().Get("X-Skipped"))

	_, err := uuid.Parse(rec.Header().Get(RenderIDHeader))
	assert.NoError(t, err)
}

func TestRenderUploadMultipart(t *testing.T) {
	h := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "840000_tx_values.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, fourSquares)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/render?format=json&style=spectrum", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out struct {
		Style  string `json:"style"`
		Placed int    `json:"placed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "spectrum", out.Style)
	assert.Equal(t, 4, out.Placed)
}

func TestRenderUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
		wantErr  bmerrors.Code
	}{
		{"unknown format", "/render?format=gif", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidFormat},
		{"bad width", "/render?width=wide", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidDimensions},
		{"negative width", "/render?width=-5", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidDimensions},
		{"oversized width", "/render?format=png&width=40000", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidDimensions},
		{"huge png", "/render?format=png&width=1e9&height=1e9", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidDimensions},
		{"bad padding", "/render?padding=x", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidInput},
		{"unknown style", "/render?style=cubist", fourSquares, http.StatusBadRequest, bmerrors.ErrCodeInvalidStyle},
		{"strict rejects text", "/render?strict=true", "1\nabc\n2", http.StatusBadRequest, bmerrors.ErrCodeInvalidInput},
	}

	h := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, string(tt.wantErr), body.Code)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, rec.Header().Get(RenderIDHeader), body.RenderID)
		})
	}
}

func TestRenderUploadLenientKeepsMalformedLines(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("1\nabc\n\n2")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
}

func TestRenderUploadBodyLimit(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 8 })
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(strings.Repeat("1\n", 64))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestBlockValues(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/blocks/840000/values", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3.125\n50.25", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "840000_tx_values.txt")
}

func TestBlockRender(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"png", "image/png", "\x89PNG"},
		{"pdf", "application/pdf", "%PDF"},
	}

	h := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodGet, "/blocks/840000/render."+tt.format, nil))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), tt.prefix),
				"body starts with %q", rec.Body.String()[:min(16, rec.Body.Len())])
			assert.NotEmpty(t, rec.Header().Get(RenderIDHeader))
		})
	}
}

func TestBlockErrors(t *testing.T) {
	tests := []struct {
		target   string
		wantCode int
		wantErr  bmerrors.Code
	}{
		{"/blocks/404/render.svg", http.StatusNotFound, bmerrors.ErrCodeNotFound},
		{"/blocks/404/values", http.StatusNotFound, bmerrors.ErrCodeNotFound},
		{"/blocks/abc/values", http.StatusBadRequest, bmerrors.ErrCodeInvalidHeight},
		{"/blocks/-1/render.svg", http.StatusBadRequest, bmerrors.ErrCodeInvalidHeight},
		{"/blocks/+840000/values", http.StatusBadRequest, bmerrors.ErrCodeInvalidHeight},
		{"/blocks/9223372036854775807/render.svg", http.StatusBadRequest, bmerrors.ErrCodeInvalidHeight},
		{"/blocks/1/render.gif", http.StatusBadRequest, bmerrors.ErrCodeInvalidFormat},
	}

	h := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, string(tt.wantErr), decodeError(t, rec).Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
		})
	}
}

func TestConcurrentRendersGetDistinctIDs(t *testing.T) {
	h := newTestServer(t, nil)

	const n = 8
	ids := make([]string, n)
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := fmt.Sprintf("/blocks/%d/render.svg", 840000+i)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			ids[i] = rec.Header().Get(RenderIDHeader)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range ids {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.False(t, seen[ids[i]], "duplicate render id %s", ids[i])
		seen[ids[i]] = true
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", bmerrors.New(bmerrors.ErrCodeInvalidHeight, "bad"), http.StatusBadRequest},
		{"not found", bmerrors.New(bmerrors.ErrCodeNotFound, "gone"), http.StatusNotFound},
		{"file not found", bmerrors.New(bmerrors.ErrCodeFileNotFound, "gone"), http.StatusNotFound},
		{"timeout code", bmerrors.New(bmerrors.ErrCodeTimeout, "slow"), http.StatusGatewayTimeout},
		{"deadline", fmt.Errorf("load: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"network", bmerrors.New(bmerrors.ErrCodeNetwork, "down"), http.StatusBadGateway},
		{"unsupported", bmerrors.New(bmerrors.ErrCodeUnsupported, "no"), http.StatusNotImplemented},
		{"too large", fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{"plain", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger, fakeBlocks{}), cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
