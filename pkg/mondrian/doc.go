// Package mondrian packs squares into a rectangle with a first-fit
// rectangle-splitting strategy.
//
// # Overview
//
// A block mosaic draws one square per transaction. The squares arrive in
// block order and each one is placed into the first free region that can
// hold it. Placing a square consumes the region and splits the leftover space
// into at most two new free regions: one to the right and one below.
//
// # Basic Usage
//
// Create a layout with [New] and place squares one at a time with
// [Layout.Place]:
//
//	l, err := mondrian.New(10, 10)
//	if err != nil {
//	    return err
//	}
//	p, ok := l.Place(3) // p.Position == {0, 0}, p.Side == 3
//
// When no free region is large enough, Place reports false and leaves the
// layout untouched; later, smaller squares can still be placed.
//
// [Pack] runs the whole flow for a sequence of sizes: it sizes a bounding
// square with [BoundingSide] and returns placements aligned with the input.
//
// # Region Splitting
//
// For a chosen free region {x, y, w, h} and a square of side s:
//
//   - the right remainder {x+s, y, w-s, h} spans the full height of the
//     original region
//   - the bottom remainder {x, y+s, s, h-s} is clamped to the square's width
//
// The split is a vertical cut at x+s followed by a horizontal cut of the left
// column at y+s, so the two remainders never intersect each other or the
// placed square. A tall right column stays one region, which makes the
// layout fill columns before rows. Mosaics depend on this order.
//
// # Concurrency
//
// A [Layout] is not safe for concurrent use. Each render builds its own
// layout, so concurrent callers never share one.
package mondrian
