// Package network holds the static road-network entities — nodes, edges,
// traffic lights, and suburb polygons — and the node-type classification and
// suburb-assignment passes that annotate them. See SPEC_FULL.md §3.
package network

import (
	"sync/atomic"

	"github.com/arclight/tlrouter/geom"
)

// NodeType classifies a graph vertex by proximity to the nearest traffic
// light. AtTrafficLight is absorbing: once assigned, a later pass never
// demotes a node back to NearTrafficLight or Normal.
type NodeType uint8

const (
	Normal NodeType = iota
	NearTrafficLight
	AtTrafficLight
)

func (t NodeType) String() string {
	switch t {
	case Normal:
		return "Normal"
	case NearTrafficLight:
		return "NearTrafficLight"
	case AtTrafficLight:
		return "AtTrafficLight"
	default:
		return "Unknown"
	}
}

// SearchMethod selects the solver's edge-cost function (SPEC_FULL.md §4.5).
type SearchMethod uint8

const (
	Fastest SearchMethod = iota
	Shortest
	Avoid
)

func (m SearchMethod) String() string {
	switch m {
	case Fastest:
		return "FASTEST"
	case Shortest:
		return "SHORTEST"
	case Avoid:
		return "AVOID"
	default:
		return "UNKNOWN"
	}
}

// Connection is a directed edge from its owning Node to Target, carrying
// the raw segment length and posted speed.
type Connection struct {
	Target       uint32
	DistanceCost float32
	Speed        uint16
}

// Node is a graph vertex: a position, a 32-bit schedule flag (populated from
// its associated traffic light, if any, by Associate), its current
// classification, and an immutable outgoing-edge list. Nodes are created
// once at ingest and mutated only in type/flag until teardown.
//
// type and flag are atomic.Uint32, not plain fields: Associate fans out
// across goroutines partitioned by quadtree leaf, and a solver can be
// stepping a long-running search (engine.BackgroundWorker) in its own
// goroutine while a concurrent AssociateLightsToNodes or UpdateLightFlags
// call re-classifies nodes. Type/Flag is exactly the shared
// read-modify-write state that must never see a torn or reordered
// read/write across those goroutines.
//
// Pos, not Position, is the field name: Go can't have a field and a method
// share a name on the same type, and Position() is the accessor the
// quadtree package's Positioned constraint requires.
type Node struct {
	Index       uint32
	Pos         geom.Position
	Connections []Connection

	flag atomic.Uint32
	typ  atomic.Uint32
}

// NewNode constructs a node with an initial classification and schedule
// flag. Node embeds atomic fields, which a struct literal can't initialize
// with a nonzero value directly — use this instead of &Node{...} whenever
// Type or Flag needs a non-default starting value.
func NewNode(index uint32, pos geom.Position, typ NodeType, flag uint32, connections []Connection) *Node {
	n := &Node{Index: index, Pos: pos, Connections: connections}
	n.typ.Store(uint32(typ))
	n.flag.Store(flag)
	return n
}

// Position implements quadtree.Positioned.
func (n *Node) Position() geom.Position { return n.Pos }

// Type returns the node's current classification. Safe to call
// concurrently with SetType.
func (n *Node) Type() NodeType { return NodeType(n.typ.Load()) }

// SetType atomically updates the node's classification.
func (n *Node) SetType(t NodeType) { n.typ.Store(uint32(t)) }

// Flag returns the node's current schedule flag. Safe to call
// concurrently with SetFlag.
func (n *Node) Flag() uint32 { return n.flag.Load() }

// SetFlag atomically updates the node's schedule flag.
func (n *Node) SetFlag(f uint32) { n.flag.Store(f) }

// TrafficLight is a positioned 32-bit load-shedding schedule: bit i means
// load-shedding is active during hour i. The solver's shed selects bit
// floor(t).
type TrafficLight struct {
	ID   uint32
	Pos  geom.Position
	Flag uint32
}

// Position implements quadtree.Positioned.
func (l *TrafficLight) Position() geom.Position { return l.Pos }

// Suburb is a closed polygon (last point implicitly equals the first) with
// a precomputed bounding box for prefiltering.
type Suburb struct {
	ID       uint32
	Boundary geom.Boundary
	XPoints  []float64
	YPoints  []float64
}
