package pipeline

import (
	"context"
	"time"

	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/integrations/blockchaininfo"
	bmio "github.com/matzehuels/blockmondrian/pkg/io"
)

// BlockSource fetches blocks by height. [blockchaininfo.Client] is the
// production implementation.
type BlockSource interface {
	FetchBlock(ctx context.Context, height int64, refresh bool) (*blockchaininfo.Block, error)
}

// loadValues resolves the configured source into transaction values.
func loadValues(ctx context.Context, blocks BlockSource, opts Options) ([]float64, error) {
	switch {
	case opts.Values != nil:
		return opts.Values, nil

	case opts.BlockHeight != nil:
		if blocks == nil {
			return nil, bmerrors.New(bmerrors.ErrCodeUnsupported, "no block source configured")
		}
		block, err := blocks.FetchBlock(ctx, *opts.BlockHeight, opts.Refresh)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("fetched block",
			"height", block.Height,
			"hash", block.Hash,
			"time", block.Timestamp().Format(time.RFC3339),
			"transactions", len(block.Transactions))
		return block.TxValues(), nil

	default:
		return bmio.ImportValues(opts.Input, opts.Strict)
	}
}
