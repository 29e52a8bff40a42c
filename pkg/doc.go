// Package pkg provides the core libraries for Blockmondrian block mosaics.
//
// # Overview
//
// Blockmondrian draws the transactions of a Bitcoin block as a Mondrian-style
// mosaic: every transaction becomes a square whose side follows the order of
// magnitude of its value, and the squares are packed into one bounding
// square. The pkg directory is organized into four main areas:
//
//  1. [mondrian] and [classify] - Domain logic (bucketing, packing)
//  2. [render] - Visualization (mosaic geometry, output sinks, charts)
//  3. [integrations] - External API clients (blockchain.info)
//  4. [pipeline] - Orchestration (load → layout → render)
//
// # Architecture
//
// The typical data flow:
//
//	Block height or values file
//	         ↓
//	    [io] / [integrations] (transaction values)
//	         ↓
//	    [classify] (one bucket per value)
//	         ↓
//	    [mondrian] (first-fit guillotine packing)
//	         ↓
//	    [render] (scene, viewport, sinks)
//	         ↓
//	    SVG/PNG/PDF/HTML/JSON output
//
// # Quick Start
//
//	values, _ := io.ReadValues(strings.NewReader("0.05\n0.05\n0.001\n0.001\n"))
//	buckets := classify.DefaultThresholds.BucketAll(values)
//	result := mondrian.Pack(classify.Sizes(buckets))
//	fmt.Println(result.Side, result.Stats.Placed) // 4 4
//
// Most callers go through [pipeline], which adds caching and observability:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger, nil)
//	result, err := runner.Execute(ctx, opts)
//
// # Infrastructure
//
// [cache] - Content-addressed caching with file, redis and null backends.
//
// [config] - TOML configuration with built-in defaults.
//
// [errors] - Coded errors shared by the CLI and the HTTP server.
//
// [httputil] - Retry helpers for flaky upstream APIs.
//
// [observability] - Pipeline hooks and OpenTelemetry tracing.
//
// [mondrian]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/mondrian
// [classify]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/classify
// [render]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/render
// [integrations]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/integrations
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/blockmondrian/pkg/observability
package pkg
