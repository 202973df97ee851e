package quadtree_test

import (
	"testing"

	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	pos geom.Position
}

func (p *point) Position() geom.Position { return p.pos }

func unitSquare() geom.Boundary {
	return geom.Boundary{Min: geom.Position{X: 0, Y: 0}, Max: geom.Position{X: 1, Y: 1}}
}

func TestAddAndFindSingleItem(t *testing.T) {
	tree := quadtree.New[*point](unitSquare())
	p := &point{pos: geom.Position{X: 0.3, Y: 0.4}}
	require.True(t, tree.Add(p))

	found, ok := tree.Find(p.pos)
	require.True(t, ok)
	assert.Contains(t, found, p)
}

func TestAddOutsideRootBoundaryFails(t *testing.T) {
	tree := quadtree.New[*point](unitSquare())
	p := &point{pos: geom.Position{X: 5, Y: 5}}
	assert.False(t, tree.Add(p))

	_, ok := tree.Find(p.pos)
	assert.False(t, ok)
}

func TestSubdividesExactlyOnceAtCapacity(t *testing.T) {
	tree := quadtree.New[*point](unitSquare())
	for i := 0; i < quadtree.BucketCapacity+1; i++ {
		x := float64(i%1000) / 1000.0
		y := float64((i*7)%1000) / 1000.0
		require.True(t, tree.Add(&point{pos: geom.Position{X: x, Y: y}}))
	}
	assert.True(t, tree.HasChildren())
}

func TestSaturatesAtMaxDepthWithoutPanicking(t *testing.T) {
	// Every point lands at the exact same coordinate, forcing the tree to
	// recurse to max depth on every insert; exercises the "accept past
	// capacity at max depth" edge-case policy. A small bucket cap/max depth
	// keeps the test fast while exercising the identical code path spec.md's
	// "1025^2 points into depth-32 subtrees" scenario describes.
	tree := quadtree.NewWithLimits[*point](unitSquare(), 4, 3)
	assert.NotPanics(t, func() {
		for i := 0; i < 200; i++ {
			tree.Add(&point{pos: geom.Position{X: 0.5, Y: 0.5}})
		}
	})

	found, ok := tree.Find(geom.Position{X: 0.5, Y: 0.5})
	require.True(t, ok)
	assert.Len(t, found, 200)
}

func TestFindReturnsLeafWhoseBoundaryContainsPoint(t *testing.T) {
	tree := quadtree.New[*point](unitSquare())
	for i := 0; i < quadtree.BucketCapacity*3; i++ {
		x := float64(i%997) / 997.0
		y := float64((i*13)%991) / 991.0
		tree.Add(&point{pos: geom.Position{X: x, Y: y}})
	}

	probe := geom.Position{X: 0.73, Y: 0.21}
	found, ok := tree.Find(probe)
	require.True(t, ok)
	leaf, ok := tree.FindLeaf(probe)
	require.True(t, ok)
	assert.True(t, leaf.Contains(probe))
	assert.Equal(t, leaf.Bucket(), found)
	// every bucket item found for that leaf must itself be positioned
	// inside the leaf's boundary.
	for _, item := range found {
		assert.True(t, leaf.Contains(item.Position()))
	}
}

func TestPointOnSharedEdgeResolvesToFirstQuadrant(t *testing.T) {
	tree := quadtree.New[*point](unitSquare())
	for i := 0; i < quadtree.BucketCapacity+1; i++ {
		x := float64(i%1000) / 1000.0
		y := float64((i*7)%1000) / 1000.0
		tree.Add(&point{pos: geom.Position{X: x, Y: y}})
	}
	center := tree.Boundary().Center()
	marker := &point{pos: center}
	require.True(t, tree.Add(marker))

	found, ok := tree.Find(center)
	require.True(t, ok)
	assert.Contains(t, found, marker)

	// center is the corner all four children share; TL is listed first.
	tl, _, _, _ := tree.Boundary().Quadrants()
	leaf, ok := tree.FindLeaf(center)
	require.True(t, ok)
	assert.Equal(t, tl, leaf.Boundary())
}
