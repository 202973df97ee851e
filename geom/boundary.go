package geom

// Boundary is an axis-aligned bounding box over Position space.
type Boundary struct {
	Min, Max Position
}

// Contains reports whether p lies within the box, inclusive on both edges:
// min <= p <= max componentwise.
func (b Boundary) Contains(p Position) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Overlaps reports whether b and o share any area: min <= o.max && max >= o.min.
func (b Boundary) Overlaps(o Boundary) bool {
	return b.Min.X <= o.Max.X && b.Min.Y <= o.Max.Y && b.Max.X >= o.Min.X && b.Max.Y >= o.Min.Y
}

// Center returns the midpoint of the box, computed the same way the
// original quadtree subdivision does: max - (max-min)/2, to match its
// floating-point rounding exactly at the boundary.
func (b Boundary) Center() Position {
	return b.Max.Sub(b.Max.Sub(b.Min).Scale(2))
}

// Area returns the (possibly zero or negative, for a degenerate box) area
// of the boundary; used by suburb-to-light assignment to pick the smallest
// containing suburb.
func (b Boundary) Area() float64 {
	return (b.Max.X - b.Min.X) * (b.Max.Y - b.Min.Y)
}

// Quadrants splits b into the four axis-aligned children a quadtree
// subdivision produces, in TL, TR, BL, BR order — the tie-break order used
// throughout the quadtree package.
func (b Boundary) Quadrants() (topLeft, topRight, bottomLeft, bottomRight Boundary) {
	c := b.Center()
	topLeft = Boundary{Min: Position{X: b.Min.X, Y: c.Y}, Max: Position{X: c.X, Y: b.Max.Y}}
	topRight = Boundary{Min: c, Max: b.Max}
	bottomLeft = Boundary{Min: b.Min, Max: c}
	bottomRight = Boundary{Min: Position{X: c.X, Y: b.Min.Y}, Max: Position{X: b.Max.X, Y: c.Y}}
	return
}
