package blockchaininfo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/blockmondrian/pkg/cache"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
)

const blockJSON = `{"blocks":[{
	"hash":"00000000000000000002a7c4",
	"height":840000,
	"time":1713571767,
	"tx":[
		{"hash":"a","out":[{"value":312500000},{"value":0}]},
		{"hash":"b","out":[{"value":5000000000},{"value":25000000}]},
		{"hash":"c","out":[{"value":1}]},
		{"hash":"d","out":[]}
	]
}]}`

func newServer(t *testing.T, body string, status int, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if r.URL.Path != "/block-height/840000" || r.URL.Query().Get("format") != "json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestFetchBlock(t *testing.T) {
	server := newServer(t, blockJSON, http.StatusOK, nil)
	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	block, err := c.FetchBlock(context.Background(), 840000, false)
	if err != nil {
		t.Fatalf("FetchBlock: %v", err)
	}
	if block.Height != 840000 || block.Hash != "00000000000000000002a7c4" {
		t.Errorf("block = %d %s", block.Height, block.Hash)
	}
	if got := block.Timestamp().Year(); got != 2024 {
		t.Errorf("Timestamp year = %d, want 2024", got)
	}

	want := []float64{3.125, 50.25, 1e-8, 0}
	got := block.TxValues()
	if len(got) != len(want) {
		t.Fatalf("TxValues len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TxValues[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFetchBlockNoBlocks(t *testing.T) {
	server := newServer(t, `{"blocks":[]}`, http.StatusOK, nil)
	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	_, err := c.FetchBlock(context.Background(), 840000, false)
	if !errors.Is(err, ErrNoBlocks) {
		t.Errorf("err = %v, want ErrNoBlocks", err)
	}
	if !bmerrors.Is(err, bmerrors.ErrCodeNotFound) {
		t.Errorf("err code = %q, want NOT_FOUND", bmerrors.GetCode(err))
	}
}

func TestFetchBlockNotFound(t *testing.T) {
	server := newServer(t, blockJSON, http.StatusOK, nil)
	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	_, err := c.FetchBlock(context.Background(), 1, false)
	if !bmerrors.Is(err, bmerrors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestFetchBlockNegativeHeight(t *testing.T) {
	var hits int32
	server := newServer(t, blockJSON, http.StatusOK, &hits)
	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	_, err := c.FetchBlock(context.Background(), -1, false)
	if !bmerrors.Is(err, bmerrors.ErrCodeInvalidHeight) {
		t.Errorf("err = %v, want INVALID_HEIGHT", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("server hit %d times for an invalid height", atomic.LoadInt32(&hits))
	}
}

func TestFetchBlockCached(t *testing.T) {
	var hits int32
	server := newServer(t, blockJSON, http.StatusOK, &hits)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()
	c := NewClientWithBaseURL(fc, time.Hour, server.URL)
	ctx := context.Background()

	for range 2 {
		block, err := c.FetchBlock(ctx, 840000, false)
		if err != nil {
			t.Fatalf("FetchBlock: %v", err)
		}
		if len(block.Transactions) != 4 {
			t.Fatalf("transactions = %d, want 4", len(block.Transactions))
		}
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("server hits = %d, want 1", atomic.LoadInt32(&hits))
	}

	if _, err := c.FetchBlock(ctx, 840000, true); err != nil {
		t.Fatalf("FetchBlock refresh: %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("server hits after refresh = %d, want 2", atomic.LoadInt32(&hits))
	}
}

func TestFetchBlockBadJSON(t *testing.T) {
	server := newServer(t, `{"blocks":`, http.StatusOK, nil)
	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	_, err := c.FetchBlock(context.Background(), 840000, false)
	if !bmerrors.Is(err, bmerrors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
}
