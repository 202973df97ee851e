// Package solver implements the radix-heap Dijkstra variant described in
// SPEC_FULL.md §4.5: bounded-step execution, FASTEST/SHORTEST/AVOID edge
// weighting parameterized by node type and time-of-day load-shedding, and
// an overflow heap absorbing the rare monotonicity violation a
// time-dependent weight can produce.
package solver

import (
	"math"
	"sync/atomic"

	"github.com/arclight/tlrouter/network"
	"go.uber.org/zap"
)

// sentinelIndex marks "no predecessor", mirroring the original engine's
// u32::MAX.
const sentinelIndex = ^uint32(0)

// maxTimeHours bounds the solver's radix-heap key space: spec.md's MAX_TIME
// constant, 16 hours in seconds. A search cost exceeding this wraps the
// push key (harmless: it only ever degrades heap ordering quality, never
// correctness, since the backup heap absorbs any resulting monotonicity
// violation).
const (
	maxTimeHours      = 16
	maxTimeSeconds    = uint32(maxTimeHours * 3600)
	hourToSecFactor   = 3600.0
)

// PathResult is the outcome of a completed search: the node-index walk from
// start to end (inclusive), total distance (meters-equivalent raw units, as
// decoded from Connection.DistanceCost), and total weighted time in hours.
// An unreachable end yields a zero-value PathResult with a nil Indices.
type PathResult struct {
	Indices  []uint32
	Distance float64
	Time     float64
}

// Found reports whether a path was reconstructed.
func (p PathResult) Found() bool {
	return len(p.Indices) > 0
}

// StepResult reports the outcome of one bounded Step call.
type StepResult struct {
	// Done is true once the primary and backup heaps are both drained —
	// spec.md's fully_searched().
	Done bool
	// TotalIterations is the cumulative relaxation count since the last
	// Reset/UpdateSearch.
	TotalIterations uint32
}

// Solver holds one in-flight (or completed) search over a shared node
// slice. Nodes are addressed by position in the slice, which must equal
// their Index (the CSR-equivalent layout SPEC_FULL.md §3 describes).
// Pos/Connections never change after ingest, but Type/Flag can: a host may
// call Engine.AssociateLightsToNodes or UpdateLightFlags while a
// long-running search (engine.BackgroundWorker) is mid-Step in another
// goroutine, so the solver reads Type/Flag through network.Node's atomic
// accessors rather than as plain fields. Solver is not reentrant: Step must
// not be called concurrently with itself or with any other Solver method
// (spec.md §5).
type Solver struct {
	nodes  []*network.Node
	logger *zap.Logger

	method           network.SearchMethod
	startNode        uint32
	endNode          uint32
	maxIterations    uint32
	currentIteration uint32
	totalIterations  uint32

	costs            []float64
	previous         []uint32
	connectionLen    []uint16
	previousDistance []float64

	heap       *radixHeap
	backupHeap *radixHeap

	warmupEnabled bool
	warmupSpeed   float64

	// path is an atomic.Pointer, not a plain *PathResult, so a background
	// worker's goroutine (engine.BackgroundWorker) can call Path() while
	// Step runs concurrently on the solver's owning goroutine without a
	// data race — Step is still not reentrant with itself or any other
	// mutating method, but Path is safe to read from any goroutine at any
	// time.
	path atomic.Pointer[PathResult]
}

// Option configures optional Solver behavior at construction time.
type Option func(*Solver)

// WithHeuristicWarmup enables the opt-in admissible-heuristic warm-up pass
// (disabled by default): at the end of every Reset, a bounded A* pass over
// fastestSpeed seeds cost/previous/connectionLen/previousDistance with an
// early upper bound, shrinking the number of relaxations the radix-heap
// loop performs. It never changes the reported path — the radix heap (with
// its backup-heap overflow) remains the sole source of truth.
func WithHeuristicWarmup(fastestSpeed float64) Option {
	return func(s *Solver) {
		s.warmupEnabled = true
		s.warmupSpeed = fastestSpeed
	}
}

// New builds a Solver bound to nodes (shared, not copied) for a single
// start/end search, and resets it to a fresh initial state. nodes[i].Index
// must equal i for every i.
func New(nodes []*network.Node, start, end uint32, maxIterations uint32, method network.SearchMethod, logger *zap.Logger, opts ...Option) (*Solver, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}
	if int(start) >= len(nodes) || int(end) >= len(nodes) {
		return nil, ErrIndexOutOfRange
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Solver{
		nodes:            nodes,
		logger:           logger,
		method:           method,
		maxIterations:    maxIterations,
		costs:            make([]float64, len(nodes)),
		previous:         make([]uint32, len(nodes)),
		connectionLen:    make([]uint16, len(nodes)),
		previousDistance: make([]float64, len(nodes)),
		heap:             newRadixHeap(),
		backupHeap:       newRadixHeap(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// Bounds already checked above, so this can never fail here.
	_ = s.UpdateSearch(start, end)
	return s, nil
}

// SetSearchMethod switches the edge-weight function for subsequent Step
// calls. Does not reset in-flight search state; callers that want a clean
// search after switching methods should call UpdateSearch.
func (s *Solver) SetSearchMethod(m network.SearchMethod) {
	s.method = m
}

// SearchMethod returns the currently configured search method.
func (s *Solver) SearchMethod() network.SearchMethod {
	return s.method
}

// UpdateSearchSpeed mutates the iteration budget live, per spec.md §4.5's
// incremental-execution contract.
func (s *Solver) UpdateSearchSpeed(n uint32) {
	s.maxIterations = n
}

// UpdateSearch rebinds the solver to a new start/end pair and resets all
// per-node state.
func (s *Solver) UpdateSearch(start, end uint32) error {
	if int(start) >= len(s.nodes) || int(end) >= len(s.nodes) {
		return ErrIndexOutOfRange
	}
	s.startNode = start
	s.endNode = end
	s.Reset()
	return nil
}

// Reset clears cost/previous/connection-length/previous-distance vectors,
// both heaps, and the cached path, then seeds the primary heap with the
// start node at cost 0 — spec.md §4.5's Initialization.
func (s *Solver) Reset() {
	for i := range s.costs {
		s.costs[i] = math.Inf(1)
		s.previous[i] = sentinelIndex
		s.connectionLen[i] = 0
		s.previousDistance[i] = 0
	}
	s.heap = newRadixHeap()
	s.backupHeap = newRadixHeap()
	s.currentIteration = 0
	s.totalIterations = 0
	s.path.Store(nil)

	s.heap.Push(maxTimeSeconds, s.startNode)
	s.costs[s.startNode] = 0

	if s.warmupEnabled {
		s.warmup(int(s.maxIterations), s.warmupSpeed)
	}
}

// FullySearched reports whether the primary heap has been drained — no
// more relaxation work remains for the current search.
func (s *Solver) FullySearched() bool {
	return s.heap.IsEmpty()
}

// Path returns the most recently reconstructed path, if any. It is
// refreshed at the end of every Step call.
func (s *Solver) Path() (PathResult, bool) {
	p := s.path.Load()
	if p == nil {
		return PathResult{}, false
	}
	return *p, true
}

// Step performs up to maxIterations relaxations (or until the primary heap
// empties, whichever comes first), merges any backup-heap entries back into
// the primary heap, and — if the end node has been visited — reconstructs
// and caches the path. Safe to call repeatedly; each call resumes exactly
// where the last left off (spec.md §4.5's "incremental execution").
func (s *Solver) Step(timeOfDayHour float64) StepResult {
	s.computeRadix(timeOfDayHour)
	s.merge()
	s.currentIteration = 0

	if !math.IsInf(s.costs[s.endNode], 1) {
		path, distance, time := s.backtrack()
		s.path.Store(&PathResult{Indices: path, Distance: distance, Time: time})
	}

	return StepResult{Done: s.heap.IsEmpty(), TotalIterations: s.totalIterations}
}

// RunToCompletion calls Step repeatedly until the search is fully drained,
// for callers that don't need incremental batches (e.g. FindPath).
func (s *Solver) RunToCompletion(timeOfDayHour float64) PathResult {
	for {
		res := s.Step(timeOfDayHour)
		if res.Done {
			break
		}
	}
	path, _ := s.Path()
	return path
}

func (s *Solver) computeRadix(timeOfDayHour float64) {
	for !s.heap.IsEmpty() && s.currentIteration < s.maxIterations {
		s.currentIteration++
		s.totalIterations++

		popKey, u, _ := s.heap.Pop()
		localCost := s.costs[u]

		// spec.md §4.5 step 2: "if cost[end] <= cost[u], skip".
		if s.costs[s.endNode] <= localCost {
			continue
		}

		node := s.nodes[u]
		nodeType := node.Type()
		flag := node.Flag()
		newLength := s.connectionLen[u] + 1
		timeOffset := timeOfDayHour + localCost

		for _, conn := range node.Connections {
			weight := s.calculateWeight(conn, nodeType, flag, timeOffset)
			newCost := localCost + weight
			v := conn.Target

			if !s.checkUpdatedAndSave(v, newCost, float64(conn.DistanceCost), u, newLength) {
				continue
			}
			if v == s.endNode {
				continue
			}

			pushKey := maxTimeSeconds - uint32(newCost*hourToSecFactor)
			if pushKey <= popKey {
				s.heap.Push(pushKey, v)
			} else {
				s.backupHeap.Push(pushKey, v)
			}
		}
	}
}

// checkUpdatedAndSave relaxes the edge into v if newCost improves on the
// current best; returns whether it did.
func (s *Solver) checkUpdatedAndSave(v uint32, newCost, connDistance float64, from uint32, length uint16) bool {
	if s.costs[v] > newCost {
		s.costs[v] = newCost
		s.previous[v] = from
		s.connectionLen[v] = length
		s.previousDistance[v] = connDistance
		return true
	}
	return false
}

// merge drains the backup heap back into the primary heap whenever it's
// non-empty, rebuilding the primary heap fresh so its monotonicity bound
// restarts from the true maximum key across both — spec.md §4.5's Batch
// boundary.
func (s *Solver) merge() {
	if s.backupHeap.IsEmpty() {
		return
	}
	merged := newRadixHeap()
	s.heap.Each(func(k, v uint32) { merged.Push(k, v) })
	s.backupHeap.Each(func(k, v uint32) { merged.Push(k, v) })
	s.heap = merged
	s.backupHeap = newRadixHeap()
}

// calculateWeight implements spec.md §4.5's edge-weight table.
func (s *Solver) calculateWeight(conn network.Connection, nodeType network.NodeType, flag uint32, timeOffset float64) float64 {
	switch s.method {
	case network.Shortest:
		return float64(conn.DistanceCost) / 60.0
	case network.Avoid:
		base := float64(conn.DistanceCost) / float64(conn.Speed)
		switch nodeType {
		case network.NearTrafficLight:
			return base + base*100*shed(flag, timeOffset)
		case network.AtTrafficLight:
			return base + base*200*shed(flag, timeOffset)
		default:
			return base
		}
	default: // Fastest
		base := float64(conn.DistanceCost) / float64(conn.Speed)
		switch nodeType {
		case network.NearTrafficLight:
			return base + base*3*shed(flag, timeOffset)
		case network.AtTrafficLight:
			return base + base*5*shed(flag, timeOffset)
		default:
			return base
		}
	}
}

// shed extracts load-shedding bit floor(t) of flag as 0 or 1, via
// ((flag << (31 - floor(t))) >> 31) — spec.md §4.5's formula, transliterated
// bit-for-bit from original_source's is_load_shedding. Go's shift operators
// are defined (not undefined behavior) for any non-negative shift count,
// including ones >= 32, which they treat as producing 0; that is exactly
// the desired behavior here when t grows large enough that 31-floor(t)
// underflows, so no extra bounds check is needed.
func shed(flag uint32, t float64) float64 {
	if t < 0 {
		t = 0
	}
	h := uint32(math.Floor(t))
	bit := (flag << (31 - h)) >> 31
	return float64(bit)
}

// backtrack walks previous back connectionLen[endNode] hops, accumulating
// the traversed distance and its time-weighted cost under the solver's
// current search method. At each hop the departure node's type/flag/first-
// connection speed approximate the traversed edge's own properties — the
// acknowledged simplification from spec.md §4.5 ("Note: speed in
// backtracking uses node.connections[0].speed... an acknowledged
// simplification"). See DESIGN.md for why the distance accumulation indexes
// previousDistance by the arrival node (not the departure node, as a
// literal reading of original_source's backtrack would) and why the time
// accumulation reuses calculateWeight under the solver's actual search
// method rather than hardcoding FASTEST's multipliers.
func (s *Solver) backtrack() (path []uint32, distance, time float64) {
	length := int(s.connectionLen[s.endNode])
	path = make([]uint32, 0, length+1)

	node := s.endNode
	for i := 0; i < length; i++ {
		path = append(path, node)

		from := s.previous[node]
		edgeDistance := s.previousDistance[node]
		timeOffset := s.costs[from]
		departure := s.nodes[from]

		distance += edgeDistance
		synthetic := network.Connection{
			DistanceCost: float32(edgeDistance),
			Speed:        departure.Connections[0].Speed,
		}
		time += s.calculateWeight(synthetic, departure.Type(), departure.Flag(), timeOffset)

		if from == sentinelIndex {
			break
		}
		node = from
	}
	path = append(path, node)

	// path was built end -> start; reverse to start -> end.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, distance, time
}
