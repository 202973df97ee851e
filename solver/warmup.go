package solver

import (
	"container/heap"

	"github.com/arclight/tlrouter/geom"
)

// DefaultWarmupSpeed is the assumed top speed WithHeuristicWarmup's callers
// default to absent a better estimate, matching original_source's
// ASSUMED_SPEED constant for its own pairing-heap warm-up pass.
const DefaultWarmupSpeed = 90.0

// warmup runs a bounded A* pass from start to end before the radix-heap
// search begins, using straight-line distance as an admissible heuristic
// under fastestSpeed. It never changes the radix search's final answer —
// the radix heap remains the sole source of truth for Step/Path — it only
// primes costs/previous/connectionLen/previousDistance with an early upper
// bound, which shrinks the number of relaxations computeRadix performs by
// letting the existing-cost check in checkUpdatedAndSave reject more
// candidates sooner. Grounded on the container/heap min-heap A* used for
// geodata pathfinding in the wider example pack; that implementation
// carries no module-level sentinel errors of its own, so warmup simply
// returns early when start == end or the open list empties without
// reaching the target — it is best-effort, never an error condition.
func (s *Solver) warmup(maxIterations int, fastestSpeed float64) {
	if s.startNode == s.endNode || fastestSpeed <= 0 {
		return
	}

	open := &warmupHeap{}
	heap.Init(open)
	heap.Push(open, &warmupNode{index: s.startNode, g: 0, f: s.heuristic(s.startNode, fastestSpeed)})

	visited := make(map[uint32]struct{}, 256)

	for i := 0; i < maxIterations && open.Len() > 0; i++ {
		current := heap.Pop(open).(*warmupNode)
		if _, seen := visited[current.index]; seen {
			continue
		}
		visited[current.index] = struct{}{}

		if current.index == s.endNode {
			return
		}

		node := s.nodes[current.index]
		newLength := s.connectionLen[current.index] + 1
		for _, conn := range node.Connections {
			g := current.g + float64(conn.DistanceCost)/fastestSpeed
			if !s.checkUpdatedAndSave(conn.Target, g, float64(conn.DistanceCost), current.index, newLength) {
				continue
			}
			f := g + s.heuristic(conn.Target, fastestSpeed)
			heap.Push(open, &warmupNode{index: conn.Target, g: g, f: f})
		}
	}
}

// heuristic is straight-line distance to the end node, divided by the
// fastest speed any edge can offer — admissible for FASTEST since no real
// edge cost can be cheaper than covering its distance at top speed.
func (s *Solver) heuristic(from uint32, fastestSpeed float64) float64 {
	a := s.nodes[from].Position()
	b := s.nodes[s.endNode].Position()
	return geom.Distance(a, b) / fastestSpeed
}

type warmupNode struct {
	index      uint32
	g, f       float64
	heapIndex int
}

// warmupHeap is a container/heap min-heap over warmupNode.f, the same
// shape as the la2go geodata A* open list.
type warmupHeap []*warmupNode

func (h warmupHeap) Len() int { return len(h) }
func (h warmupHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h warmupHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *warmupHeap) Push(x any) {
	n := x.(*warmupNode)
	n.heapIndex = len(*h)
	*h = append(*h, n)
}

func (h *warmupHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
