package blockchaininfo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/blockmondrian/pkg/buildinfo"
	"github.com/matzehuels/blockmondrian/pkg/cache"
	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/integrations"
	"github.com/matzehuels/blockmondrian/pkg/observability"
)

// Source names this data source in cache keys and observability events.
const Source = "blockchaininfo"

// DefaultBaseURL is the public blockchain.info endpoint.
const DefaultBaseURL = "https://blockchain.info"

// SatoshiPerBTC converts output values to BTC.
const SatoshiPerBTC = 1e8

// ErrNoBlocks is returned when the explorer knows no block at a height.
var ErrNoBlocks = errors.New("no blocks found for the specified block height")

// Output is one transaction output.
type Output struct {
	Value int64 `json:"value"` // satoshi
}

// Transaction is one transaction in a block.
type Transaction struct {
	Hash    string   `json:"hash"`
	Outputs []Output `json:"out"`
}

// Value returns the transaction's output total in BTC.
func (t Transaction) Value() float64 {
	var sum int64
	for _, o := range t.Outputs {
		sum += o.Value
	}
	return float64(sum) / SatoshiPerBTC
}

// Block is a decoded block. Transactions keep the explorer's order.
type Block struct {
	Hash         string        `json:"hash"`
	Height       int64         `json:"height"`
	Time         int64         `json:"time"`
	Transactions []Transaction `json:"tx"`
}

// TxValues returns one BTC value per transaction, in block order.
func (b *Block) TxValues() []float64 {
	values := make([]float64, len(b.Transactions))
	for i, tx := range b.Transactions {
		values[i] = tx.Value()
	}
	return values
}

// Timestamp returns the block time.
func (b *Block) Timestamp() time.Time {
	return time.Unix(b.Time, 0).UTC()
}

// Client fetches blocks from blockchain.info.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client caching decoded blocks in c for cacheTTL.
// A nil cache disables caching.
func NewClient(c cache.Cache, cacheTTL time.Duration) *Client {
	return NewClientWithBaseURL(c, cacheTTL, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a mirror or test server.
func NewClientWithBaseURL(c cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
		"Accept":     "application/json",
	}
	return &Client{
		Client:  integrations.NewClient(c, Source, cacheTTL, headers),
		baseURL: baseURL,
	}
}

// FetchBlock retrieves the first block at height.
//
// Returns:
//   - INVALID_HEIGHT for a negative height
//   - NOT_FOUND wrapping [ErrNoBlocks] or [integrations.ErrNotFound] when
//     no block exists at height
//   - NETWORK_ERROR for transport failures after retries
//
// The returned Block is never nil if err is nil.
func (c *Client) FetchBlock(ctx context.Context, height int64, refresh bool) (*Block, error) {
	if height < 0 {
		return nil, bmerrors.New(bmerrors.ErrCodeInvalidHeight, "block height must be non-negative, got %d", height)
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, Source, height)
	start := time.Now()

	var block Block
	err := c.Cached(ctx, fmt.Sprintf("block-height/%d", height), refresh, &block, func() error {
		return c.fetch(ctx, height, &block)
	})
	hooks.OnFetchComplete(ctx, Source, height, len(block.Transactions), time.Since(start), err)
	if err != nil {
		return nil, classify(err, height)
	}
	return &block, nil
}

func (c *Client) fetch(ctx context.Context, height int64, block *Block) error {
	var data blocksResponse
	url := fmt.Sprintf("%s/block-height/%d?format=json", c.baseURL, height)
	if err := c.Get(ctx, url, &data); err != nil {
		return err
	}
	if len(data.Blocks) == 0 {
		return ErrNoBlocks
	}
	*block = data.Blocks[0]
	return nil
}

func classify(err error, height int64) error {
	switch {
	case errors.Is(err, ErrNoBlocks), errors.Is(err, integrations.ErrNotFound):
		return bmerrors.Wrap(bmerrors.ErrCodeNotFound, err, "block %d", height)
	case errors.Is(err, context.DeadlineExceeded):
		return bmerrors.Wrap(bmerrors.ErrCodeTimeout, err, "block %d", height)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return bmerrors.Wrap(bmerrors.ErrCodeNetwork, err, "failed to fetch block %d", height)
	}
}

type blocksResponse struct {
	Blocks []Block `json:"blocks"`
}
