// Package render groups the visual outputs of a packed block.
//
// # Overview
//
//   - [mosaic]: geometry of the packed squares and the viewport transform
//   - [mosaic/sink]: output formats (SVG, PNG, PDF, HTML, JSON, ANSI)
//   - [mosaic/styles]: fill colors per bucket (solid, spectrum)
//   - [chart]: bucket histogram as an interactive HTML chart
//
// The sinks never pack or classify on their own. They receive a finished
// frame and only draw it, so every format shows the same squares.
//
// [mosaic]: github.com/matzehuels/blockmondrian/pkg/render/mosaic
// [mosaic/sink]: github.com/matzehuels/blockmondrian/pkg/render/mosaic/sink
// [mosaic/styles]: github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles
// [chart]: github.com/matzehuels/blockmondrian/pkg/render/chart
package render
