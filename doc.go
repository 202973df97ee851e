// Package tlrouter hosts the time-dependent, load-shedding-aware road
// routing engine: packages for the wire ingest format (ingest), the static
// road-network model (network), a bucketed spatial index (quadtree), a
// bounded-iteration radix-heap search (solver), tunable scaling constants
// (config), and the orchestrator that wires them together (engine).
//
// Layout:
//
//	geom/     — positions, boundaries, distance with a meters-per-degree scale
//	slotarray — fixed-capacity slot storage and a parallel chunk-fan-out helper
//	quadtree  — generic bucketed spatial index over Positioned items
//	network   — nodes, edges, traffic lights, suburbs; classification passes
//	ingest    — binary wire decoding for nodes, traffic lights, and suburbs
//	solver    — the radix-heap search, FASTEST/SHORTEST/AVOID weighting
//	config    — the tunables Default() and Load() resolve from YAML
//	engine    — the Engine façade: ingest, associate, solver pool, FindPath
//	cmd/tlrouted — the CLI host process
//
// See SPEC_FULL.md and DESIGN.md for the full component and grounding
// breakdown.
package tlrouter
