// Package config holds every tunable constant spec.md's §9 "Scaling
// constants" note says must be surfaced as a configuration parameter,
// loaded from YAML via gopkg.in/yaml.v3. Default() reproduces the spec's
// literal constants, so an engine built without a config file behaves
// exactly as spec.md describes.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/ingest"
	"gopkg.in/yaml.v3"
)

// Config collects the engine's tunables.
type Config struct {
	// Multiplier is the meters-per-degree scale the engine's nearest-node
	// lookup uses. It does not change geom.Multiplier: geom.Distance,
	// network.Associate's node classification and the solver's warm-up
	// heuristic keep using that package default.
	Multiplier geom.Position `yaml:"multiplier"`

	// QuadtreeBucketCapacity and QuadtreeMaxDepth override quadtree.
	// BucketCapacity / quadtree.MaxDepth.
	QuadtreeBucketCapacity int  `yaml:"quadtree_bucket_capacity"`
	QuadtreeMaxDepth       int8 `yaml:"quadtree_max_depth"`

	// NearThresholdMeters / AtThresholdMeters override network.
	// NearThresholdMeters / network.AtThresholdMeters.
	NearThresholdMeters float64 `yaml:"near_threshold_meters"`
	AtThresholdMeters   float64 `yaml:"at_threshold_meters"`

	// DefaultIterationBudget is the solver's max_iterations when a caller
	// doesn't set one explicitly via UpdateSearchSpeed.
	DefaultIterationBudget uint32 `yaml:"default_iteration_budget"`

	// WorkerCount sizes the parallel fan-out pool; 0 means
	// runtime.GOMAXPROCS(0).
	WorkerCount int `yaml:"worker_count"`

	// BackgroundStepInterval is the sleep between Step calls in the
	// cooperative background-worker pattern (spec.md §5).
	BackgroundStepInterval time.Duration `yaml:"background_step_interval"`

	// SolverPoolSize bounds the engine's solver pool — "a small pool of
	// solvers (each a fresh instance, indexed 0..k)" per spec.md §4.6.
	// BuildSolver returns engine.InvalidHandle once all slots are in use.
	SolverPoolSize int `yaml:"solver_pool_size"`

	// NodeWireFormat selects which ingest.DecodeNodes record shape
	// Engine.SendNodes expects, per spec.md §6's "earlier variants" note.
	// The caller picks the format up front via config; nothing sniffs it.
	NodeWireFormat ingest.NodeFormat `yaml:"node_wire_format"`
}

// Default returns spec.md's literal constants: 1024/32 bucket/depth,
// 100/25 meter thresholds, 85295.2/110948.0 meters-per-degree, a 16ms
// background step interval, and GOMAXPROCS workers.
func Default() Config {
	return Config{
		Multiplier:             geom.Position{X: 85295.2, Y: 110948.0},
		QuadtreeBucketCapacity: 1024,
		QuadtreeMaxDepth:       32,
		NearThresholdMeters:    100.0,
		AtThresholdMeters:      25.0,
		DefaultIterationBudget: 50_000,
		WorkerCount:            0,
		BackgroundStepInterval: 16 * time.Millisecond,
		SolverPoolSize:         8,
	}
}

// Load reads a YAML config file, starting from Default() so an omitted
// field keeps its spec-accurate default rather than zeroing out.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
