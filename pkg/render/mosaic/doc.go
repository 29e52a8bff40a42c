// Package mosaic turns packed squares into drawable geometry.
//
// # Overview
//
// A [Scene] is the renderer-independent view of one packed block: the
// bounding side and one [Square] per placed transaction, carrying its layout
// position, bucket and amount. Squares that could not be placed are not part
// of the scene.
//
// A [Viewport] describes the drawable area. [Viewport.Fit] computes a
// uniform scale and centering offsets for a bounding side, and
// [Transform.Rect] maps a square to output coordinates. The configured
// padding is subtracted from every side before scaling, which leaves a thin
// gap between neighbors.
//
//	scene := mosaic.NewScene(result, buckets, values)
//	frame := mosaic.NewFrame(scene, mosaic.Viewport{Width: 250, Height: 250, Padding: 0.5})
//	for _, t := range frame.Tiles() {
//	    // draw t.X, t.Y, t.Size
//	}
//
// Everything here is pure. Any change of input data or drawable area is
// handled by building a new frame.
//
// The [sink] subpackage writes frames to output formats and [styles]
// provides the fill colors.
//
// [sink]: github.com/matzehuels/blockmondrian/pkg/render/mosaic/sink
// [styles]: github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles
package mosaic
