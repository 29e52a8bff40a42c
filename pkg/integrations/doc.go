// Package integrations provides HTTP clients for block data APIs.
//
// # Overview
//
// Each upstream API has its own subpackage:
//
//   - [blockchaininfo]: blockchain.info block explorer
//
// # Client Pattern
//
// Upstream clients embed [Client] and follow one pattern:
//
//	client := blockchaininfo.NewClient(c, cache.TTLBlock)
//	block, err := client.FetchBlock(ctx, 840000, false) // false = use cache
//
// [Client] handles:
//   - JSON GET requests with default and per-request headers
//   - Status mapping: 404 is [ErrNotFound], 429 and 5xx are retryable [ErrNetwork]
//   - Retry with exponential backoff via [httputil.Retry]
//   - Caching of decoded responses in a [cache.Cache]
//   - HTTP events through [observability.HTTP]
//
// [blockchaininfo]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/integrations/blockchaininfo
package integrations
