package network

import (
	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/quadtree"
	"github.com/arclight/tlrouter/slotarray"
)

// NearThresholdMeters and AtThresholdMeters are spec.md §4.4's default
// distance thresholds; config.Config lets a host override them.
const (
	AtThresholdMeters   = 25.0
	NearThresholdMeters = 100.0
)

// ResetNodeTypes sets every node's Type to Normal, fanned out over disjoint
// index ranges. Associate's output depends only on current light
// positions/flags precisely because every run starts from this reset —
// that's what makes repeated AssociateLightsToNodes calls idempotent
// (spec.md §8's round-trip property).
func ResetNodeTypes(nodes []*Node, workers int) {
	slotarray.ForEachChunk(len(nodes), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			nodes[i].SetType(Normal)
		}
	})
}

// Associate classifies every node near a traffic light. Node-quadtree leaf
// buckets routinely overlap between nearby lights (bucket cap 1024, 25-100
// meter thresholds), so fanning out one goroutine per light would let two
// goroutines read-modify-write the same *Node concurrently. Instead,
// Associate first groups lights by the leaf their query point resolves to
// (sequential, cheap tree descents only), then fans the leaf groups out
// across workers goroutines in disjoint ranges of leaves: leaves partition
// the tree's nodes exactly once each, so no two goroutines ever touch the
// same *Node within this pass. Node.Type/Flag are
// additionally atomic (see network.Node) so a concurrent reader elsewhere —
// a long-running solver search stepping in its own goroutine — never
// observes a torn or stale value, only an old-or-new one.
//
// Call ResetNodeTypes first; Associate never demotes AtTrafficLight.
func Associate(lights []*TrafficLight, tree *quadtree.QuadTree[*Node], near, at float64, workers int) {
	if tree == nil {
		return
	}
	scale := geom.Multiplier

	groups := make(map[*quadtree.QuadTree[*Node]][]*TrafficLight)
	for _, light := range lights {
		leaf, ok := tree.FindLeaf(light.Pos)
		if !ok {
			continue
		}
		groups[leaf] = append(groups[leaf], light)
	}

	leaves := make([]*quadtree.QuadTree[*Node], 0, len(groups))
	for leaf := range groups {
		leaves = append(leaves, leaf)
	}

	slotarray.ForEachChunk(len(leaves), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			leaf := leaves[i]
			for _, node := range leaf.Bucket() {
				for _, light := range groups[leaf] {
					classify(node, light, scale, near, at)
				}
			}
		}
	})
}

func classify(node *Node, light *TrafficLight, scale geom.Position, near, at float64) {
	switch node.Type() {
	case Normal:
		d := geom.DistanceWithScale(light.Pos, node.Pos, scale)
		if d < at {
			node.SetType(AtTrafficLight)
			node.SetFlag(light.Flag)
		} else if d < near {
			node.SetType(NearTrafficLight)
			node.SetFlag(light.Flag)
		}
	case NearTrafficLight:
		d := geom.DistanceWithScale(light.Pos, node.Pos, scale)
		if d < at {
			node.SetType(AtTrafficLight)
			node.SetFlag(light.Flag)
		}
	case AtTrafficLight:
		// absorbing; never demoted.
	}
}
