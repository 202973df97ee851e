// Package engine is the orchestrator façade described in SPEC_FULL.md
// §4.6: a single *Engine value holding the ingested node/traffic-light/
// suburb collections, their quadtrees, and a small fixed-size solver pool.
// Per the REDESIGN FLAG noted in SPEC_FULL.md §4.6 there are no process-wide
// singletons — a host wires up one *Engine per road network it serves, and
// a Handle (an index into the pool) stands in for "the host's handle
// becomes a pointer to the engine."
package engine

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/arclight/tlrouter/config"
	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/ingest"
	"github.com/arclight/tlrouter/network"
	"github.com/arclight/tlrouter/quadtree"
	"github.com/arclight/tlrouter/slotarray"
	"github.com/arclight/tlrouter/solver"
	"go.uber.org/zap"
)

// boundaryPadding keeps query points that land exactly on the ingested
// extent's edge inside the quadtree's root boundary (Boundary.Contains is
// inclusive, but a point a hair outside due to floating-point error would
// otherwise make every subsequent lookup miss).
const boundaryPadding = 1e-6

// LightSuburb is one (light, suburb) pairing Compute returns.
type LightSuburb struct {
	LightID  uint32
	SuburbID uint32
}

// Engine holds the process's road-network state: ingested collections,
// their quadtrees, and a fixed-size solver pool. The zero value is not
// usable; construct with New.
type Engine struct {
	mu     sync.RWMutex
	cfg    config.Config
	logger *zap.Logger

	nodes   []*network.Node
	lights  []*network.TrafficLight
	suburbs []*network.Suburb

	nodeTree  *quadtree.QuadTree[*network.Node]
	lightTree *quadtree.QuadTree[*network.TrafficLight]

	pool []*solver.Solver
	busy []bool
}

// New builds an Engine with an empty solver pool sized by
// cfg.SolverPoolSize (falling back to config.Default()'s size if cfg's is
// non-positive) and no ingested data. logger defaults to a no-op logger if
// nil.
func New(cfg config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolSize := cfg.SolverPoolSize
	if poolSize <= 0 {
		poolSize = config.Default().SolverPoolSize
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		pool:   make([]*solver.Solver, poolSize),
		busy:   make([]bool, poolSize),
	}
}

// SendNodes decodes r under cfg.NodeWireFormat, places each decoded node at
// nodes[n.Index] (filling any gap below the highest seen index with an
// isolated placeholder node so solver.New's "nodes[i].Index == i"
// precondition always holds), and rebuilds the node quadtree over the
// ingested positions — spec.md §6's "populate singletons and build the
// relevant quadtree."
func (e *Engine) SendNodes(r io.Reader) error {
	e.mu.RLock()
	format := e.cfg.NodeWireFormat
	e.mu.RUnlock()

	decoded, err := ingest.DecodeNodes(r, format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedIngest, err)
	}

	maxIndex := -1
	for _, n := range decoded {
		if int(n.Index) > maxIndex {
			maxIndex = int(n.Index)
		}
	}
	nodes := make([]*network.Node, maxIndex+1)
	positions := make([]geom.Position, 0, len(decoded))
	for _, n := range decoded {
		nodes[n.Index] = n
		positions = append(positions, n.Pos)
	}
	for i := range nodes {
		if nodes[i] == nil {
			nodes[i] = network.NewNode(uint32(i), geom.Position{}, network.Normal, 0, nil)
		}
	}

	e.mu.Lock()
	e.nodes = nodes
	e.nodeTree = buildQuadTree[*network.Node](e.boundaryOf(positions), e.cfg, nodes)
	e.mu.Unlock()

	e.logger.Info("nodes ingested",
		zap.Int("decoded", len(decoded)),
		zap.Int("slots", len(nodes)),
	)
	return nil
}

// SendTrafficLights decodes r, replaces the engine's traffic-light
// collection, and rebuilds the traffic-light quadtree over the ingested
// positions. It does not re-run AssociateLightsToNodes; call that
// explicitly once ingest is complete, per spec.md §4.6.
func (e *Engine) SendTrafficLights(r io.Reader) error {
	decoded, err := ingest.DecodeTrafficLights(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedIngest, err)
	}

	lights := make([]*network.TrafficLight, len(decoded))
	positions := make([]geom.Position, len(decoded))
	for i := range decoded {
		l := decoded[i]
		lights[i] = &l
		positions[i] = l.Pos
	}

	e.mu.Lock()
	e.lights = lights
	e.lightTree = buildQuadTree[*network.TrafficLight](e.boundaryOf(positions), e.cfg, lights)
	e.mu.Unlock()

	e.logger.Info("traffic lights ingested", zap.Int("count", len(lights)))
	return nil
}

// SendSuburbs decodes r and replaces the engine's suburb collection. No
// quadtree is built over suburbs: each Suburb already carries a bounding
// box (geom.Boundary) and Suburb.Contains uses it as a cheap pre-rejection
// before the polygon walk, which serves the same "point-in-polygon
// prefiltering" role spec.md §1 assigns to the quadtree, without needing a
// Positioned point to index a non-point shape by.
func (e *Engine) SendSuburbs(r io.Reader) error {
	decoded, err := ingest.DecodeSuburbs(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedIngest, err)
	}

	suburbs := make([]*network.Suburb, len(decoded))
	for i := range decoded {
		s := decoded[i]
		suburbs[i] = &s
	}

	e.mu.Lock()
	e.suburbs = suburbs
	e.mu.Unlock()

	e.logger.Info("suburbs ingested", zap.Int("count", len(suburbs)))
	return nil
}

// AssociateLightsToNodes resets every node to Normal, then re-classifies
// nodes near each traffic light — spec.md §4.4's "associate" operation,
// re-run after SendTrafficLights or UpdateLightFlags.
func (e *Engine) AssociateLightsToNodes() {
	e.mu.RLock()
	nodes := e.nodes
	lights := e.lights
	tree := e.nodeTree
	near := e.cfg.NearThresholdMeters
	at := e.cfg.AtThresholdMeters
	workers := e.cfg.WorkerCount
	e.mu.RUnlock()

	if tree == nil {
		return
	}
	network.ResetNodeTypes(nodes, workers)
	network.Associate(lights, tree, near, at, workers)

	e.logger.Info("lights associated", zap.Int("lights", len(lights)), zap.Int("nodes", len(nodes)))
}

// UpdateLightFlags overwrites every light's Flag in ingestion order, then
// re-runs AssociateLightsToNodes so node classifications pick up the new
// flags — spec.md §6's update_light_flags entry.
func (e *Engine) UpdateLightFlags(flags []uint32) error {
	e.mu.Lock()
	if len(flags) != len(e.lights) {
		n := len(e.lights)
		e.mu.Unlock()
		return fmt.Errorf("%w: got %d, want %d", ErrFlagCountMismatch, len(flags), n)
	}
	for i, f := range flags {
		e.lights[i].Flag = f
	}
	e.mu.Unlock()

	e.AssociateLightsToNodes()
	return nil
}

// BuildSolver allocates the first free pool slot as a fresh Solver bound to
// the current node collection, running under method, and returns its
// Handle. Returns InvalidHandle if the pool is exhausted or no nodes have
// been ingested yet — spec.md §7's "result record over exceptions."
func (e *Engine) BuildSolver(method network.SearchMethod) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, busy := range e.busy {
		if busy {
			continue
		}
		s, err := solver.New(e.nodes, 0, 0, e.cfg.DefaultIterationBudget, method, e.logger)
		if err != nil {
			return InvalidHandle
		}
		e.pool[i] = s
		e.busy[i] = true
		return Handle(i)
	}
	return InvalidHandle
}

// DestroySolver frees h's pool slot. Calling it with an unknown or
// already-destroyed handle is a no-op.
func (e *Engine) DestroySolver(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if int(h) < 0 || int(h) >= len(e.pool) || !e.busy[h] {
		return
	}
	e.pool[h] = nil
	e.busy[h] = false
}

// SetSearchMethod switches h's solver to m.
func (e *Engine) SetSearchMethod(h Handle, m network.SearchMethod) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.solverAtLocked(h)
	if !ok {
		return ErrUnknownHandle
	}
	s.SetSearchMethod(m)
	return nil
}

// FindPath resolves src and dst to their nearest ingested nodes, runs h's
// solver to completion against the current wall-clock time of day, and
// returns the result. An unresolvable endpoint (no node reachable from a
// quadtree lookup at that position) yields an empty, zero-cost PathResult
// rather than an error — spec.md §7's "surface as empty-path result"; the
// error return is reserved for handle misuse.
func (e *Engine) FindPath(h Handle, src, dst geom.Position) (solver.PathResult, error) {
	e.mu.Lock()
	s, ok := e.solverAtLocked(h)
	e.mu.Unlock()
	if !ok {
		return solver.PathResult{}, ErrUnknownHandle
	}

	startIdx, ok := e.closestNode(src)
	if !ok {
		return solver.PathResult{}, nil
	}
	endIdx, ok := e.closestNode(dst)
	if !ok {
		return solver.PathResult{}, nil
	}

	if err := s.UpdateSearch(startIdx, endIdx); err != nil {
		// Both indices came from the engine's own node slice, so this can't
		// happen; treat it the same as an unresolvable endpoint regardless.
		return solver.PathResult{}, nil
	}

	path := s.RunToCompletion(currentHourOfDay(time.Now()))
	e.logger.Info("path computed",
		zap.Int("handle", int(h)),
		zap.Bool("found", path.Found()),
		zap.Float64("distance", path.Distance),
		zap.Float64("time", path.Time),
	)
	return path, nil
}

// Compute maps every ingested traffic light to its smallest-area containing
// suburb, fanned out across cfg.WorkerCount goroutines over disjoint light
// ranges — spec.md §4.6's "parallel per-light: choose the smallest-area
// containing suburb."  Lights with no containing suburb are omitted from
// the result, not reported as an error.
func (e *Engine) Compute() ([]LightSuburb, error) {
	e.mu.RLock()
	lights := e.lights
	suburbs := e.suburbs
	workers := e.cfg.WorkerCount
	e.mu.RUnlock()

	if len(lights) == 0 || len(suburbs) == 0 {
		return nil, nil
	}

	results := make([]LightSuburb, len(lights))
	found := make([]bool, len(lights))
	slotarray.ForEachChunk(len(lights), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			light := lights[i]
			best, ok := smallestContaining(light.Pos, suburbs)
			if !ok {
				continue
			}
			results[i] = LightSuburb{LightID: light.ID, SuburbID: best.ID}
			found[i] = true
		}
	})

	out := make([]LightSuburb, 0, len(lights))
	for i, ok := range found {
		if ok {
			out = append(out, results[i])
		}
	}

	e.logger.Info("compute completed", zap.Int("lights", len(lights)), zap.Int("matched", len(out)))
	return out, nil
}

// NodeCount returns the number of ingested nodes (including index-gap
// placeholders SendNodes synthesizes).
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.nodes)
}

// LightCount returns the number of ingested traffic lights.
func (e *Engine) LightCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.lights)
}

// SuburbCount returns the number of ingested suburbs.
func (e *Engine) SuburbCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.suburbs)
}

// LightsNear returns the traffic-light quadtree's bucket for pos — the
// same "quadtree lookup" step get_closest_node performs for nodes,
// exposed for a host that wants to inspect which lights classified a
// region without waiting on a full AssociateLightsToNodes pass.
func (e *Engine) LightsNear(pos geom.Position) []*network.TrafficLight {
	e.mu.RLock()
	tree := e.lightTree
	e.mu.RUnlock()
	if tree == nil {
		return nil
	}
	bucket, ok := tree.Find(pos)
	if !ok {
		return nil
	}
	return bucket
}

func smallestContaining(pos geom.Position, suburbs []*network.Suburb) (*network.Suburb, bool) {
	var best *network.Suburb
	bestArea := math.Inf(1)
	for _, s := range suburbs {
		if !s.Contains(pos) {
			continue
		}
		area := s.Boundary.Area()
		if best == nil || area < bestArea {
			best = s
			bestArea = area
		}
	}
	return best, best != nil
}

// closestNode implements get_closest_node: a quadtree lookup followed by a
// linear refinement over the returned bucket, per spec.md §4.6.
func (e *Engine) closestNode(pos geom.Position) (uint32, bool) {
	e.mu.RLock()
	tree := e.nodeTree
	scale := e.cfg.Multiplier
	e.mu.RUnlock()

	if tree == nil {
		return 0, false
	}
	bucket, ok := tree.Find(pos)
	if !ok || len(bucket) == 0 {
		return 0, false
	}

	best := bucket[0]
	bestDist := geom.DistanceWithScale(pos, best.Pos, scale)
	for _, n := range bucket[1:] {
		d := geom.DistanceWithScale(pos, n.Pos, scale)
		if d < bestDist {
			best, bestDist = n, d
		}
	}
	return best.Index, true
}

// solverAtLocked returns the solver at h if it is a live pool entry. Callers
// must hold e.mu (read or write).
func (e *Engine) solverAtLocked(h Handle) (*solver.Solver, bool) {
	if int(h) < 0 || int(h) >= len(e.pool) || !e.busy[h] {
		return nil, false
	}
	return e.pool[h], true
}

// boundaryOf returns the smallest boundary containing every position,
// padded by boundaryPadding on every side so a query point exactly on the
// extent's edge never falls outside the root due to floating-point error.
// An empty positions slice returns the zero boundary (New's nodeTree/
// lightTree are left nil in that case by the caller, not built over it).
func (e *Engine) boundaryOf(positions []geom.Position) geom.Boundary {
	if len(positions) == 0 {
		return geom.Boundary{}
	}
	b := geom.Boundary{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
	}
	b.Min.X -= boundaryPadding
	b.Min.Y -= boundaryPadding
	b.Max.X += boundaryPadding
	b.Max.Y += boundaryPadding
	return b
}

// buildQuadTree constructs a tree over boundary using cfg's overrides and
// adds every item to it. Exists only to give SendNodes/SendTrafficLights a
// shared, generic construction step.
func buildQuadTree[T quadtree.Positioned](boundary geom.Boundary, cfg config.Config, items []T) *quadtree.QuadTree[T] {
	if len(items) == 0 {
		return nil
	}
	tree := quadtree.NewWithLimits[T](boundary, cfg.QuadtreeBucketCapacity, cfg.QuadtreeMaxDepth)
	for _, item := range items {
		tree.Add(item)
	}
	return tree
}

func currentHourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60.0
}
