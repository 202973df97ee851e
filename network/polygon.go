package network

import "github.com/arclight/tlrouter/geom"

// Contains reports whether pos lies strictly inside s's polygon, using the
// even-odd rule. The boundary check against s.Boundary is a cheap
// pre-rejection; ContainsNoBoundsCheck does the actual edge walk.
//
// Ported from original_source's Geometry::is_inside — the polygon is
// implicitly closed (XPoints/YPoints do not repeat the first point as the
// last), so the walk starts from the last vertex as the initial "previous"
// vertex and visits pairs (v[i-1], v[i]) for i in 0..n-1, with v[-1] taken
// as v[n-1]; the closing edge is therefore always walked. A polygon that
// does repeat its first point only adds a zero-height edge, which never
// crosses the scanline.
func (s *Suburb) Contains(pos geom.Position) bool {
	if !s.Boundary.Contains(pos) {
		return false
	}
	return s.ContainsNoBoundsCheck(pos)
}

// ContainsNoBoundsCheck runs the even-odd edge walk without the bounding-box
// pre-rejection. Exported so callers that have already pre-filtered by
// boundary (e.g. a quadtree-backed suburb lookup) can skip the redundant
// check.
func (s *Suburb) ContainsNoBoundsCheck(pos geom.Position) bool {
	x, y := pos.X, pos.Y
	n := len(s.XPoints)
	if n < 3 {
		return false
	}

	bx, by := s.XPoints[n-1], s.YPoints[n-1]
	inside := false
	for i := 0; i < n; i++ {
		ax, ay := s.XPoints[i], s.YPoints[i]

		crossesScanline := (y < ay) != (y < by)
		if crossesScanline {
			// Sign of (x-ax)(ay-by) - (y-ay)(ax-bx), compared against
			// whether by < ay — the SIMD-friendly cross-product-like test
			// from SPEC_FULL.md §4.3 / spec.md §4.3.
			lhs := (x-ax)*(ay-by) - (y-ay)*(ax-bx)
			if (lhs < 0) != (by < ay) {
				inside = !inside
			}
		}

		bx, by = ax, ay
	}
	return inside
}
