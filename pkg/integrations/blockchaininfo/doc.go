// Package blockchaininfo provides an HTTP client for the blockchain.info
// block explorer API.
//
// # Usage
//
//	client := blockchaininfo.NewClient(c, cache.TTLBlock)
//	block, err := client.FetchBlock(ctx, 840000, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	values := block.TxValues() // BTC per transaction, block order
//
// # Endpoint
//
// Blocks are fetched from GET /block-height/{height}?format=json. The
// response lists every block ever mined at that height; only the first
// entry is used. An empty list yields [ErrNoBlocks].
//
// # Values
//
// A transaction's value is the sum of its output values in satoshi divided
// by 10^8. Outputs without a value count as zero.
//
// # Caching
//
// Decoded blocks are cached under the "blockchaininfo" namespace for the
// TTL given to [NewClient]. Pass refresh=true to bypass the cache.
package blockchaininfo
