// Package engine runs the node-field simulation: it owns one node set and its
// fixed neighbor graph, advances them once per frame and emits snapshots.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/TFMV/nodefield/graph"
	"github.com/TFMV/nodefield/models"
	"github.com/TFMV/nodefield/physics"
	"github.com/TFMV/nodefield/render"
	"github.com/google/uuid"
)

var (
	ErrInvalidNodeCount     = errors.New("node count must be positive")
	ErrInvalidK             = errors.New("k must satisfy 0 < k < node count")
	ErrInvalidVelocityScale = errors.New("velocity scale must be positive")
	ErrInvalidNoise         = errors.New("invalid noise configuration")
	ErrInvalidBoundary      = errors.New("invalid boundary configuration")
)

// Config holds everything needed to build a Simulation
type Config struct {
	NodeCount     int
	K             int
	VelocityScale float64
	Seed          uint64 // 0 picks a seed from the wall clock
	Noise         string // perturbation source: uniform or simplex
	NoiseScale    float64
	Boundary      physics.BoundaryParams
	Kicks         physics.NoiseParams
}

// DefaultConfig returns the standard field: 80 nodes, 8 neighbors each
func DefaultConfig() Config {
	return Config{
		NodeCount:     80,
		K:             8,
		VelocityScale: 0.001,
		Noise:         "uniform",
		NoiseScale:    0.15,
		Boundary:      physics.DefaultBoundary(),
		Kicks:         physics.DefaultNoise(0.001),
	}
}

// Validate reports the first configuration problem found
func (c Config) Validate() error {
	if c.NodeCount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidNodeCount, c.NodeCount)
	}
	if c.K <= 0 || c.K >= c.NodeCount {
		return fmt.Errorf("%w: k=%d, nodes=%d", ErrInvalidK, c.K, c.NodeCount)
	}
	if c.VelocityScale <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidVelocityScale, c.VelocityScale)
	}
	if c.Noise != "" && c.Noise != "uniform" && c.Noise != "simplex" {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidNoise, c.Noise)
	}
	kicks := c.Kicks
	kicks.VelocityScale = c.VelocityScale
	if err := kicks.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNoise, err)
	}
	if err := c.Boundary.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoundary, err)
	}
	return nil
}

// Option customizes a Simulation
type Option func(*Simulation)

// WithClock replaces the wall clock used for frame times and colors
func WithClock(clock func() time.Time) Option {
	return func(s *Simulation) {
		s.clock = clock
	}
}

// Simulation is the frame updater. It is not safe for concurrent use: exactly
// one goroutine may call Advance.
type Simulation struct {
	id    string
	cfg   Config
	nodes *physics.NodeSet
	graph *graph.Graph
	drift *physics.Drift
	clock func() time.Time
}

// New validates cfg, spawns the node set and builds its neighbor graph
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	nodes, err := physics.NewNodeSet(cfg.NodeCount, cfg.VelocityScale, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn nodes: %w", err)
	}

	g, err := graph.Build(nodes.Positions(), cfg.K)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	perturber, err := physics.GetPerturber(cfg.Noise, rng, int64(seed), cfg.NoiseScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNoise, err)
	}

	kicks := cfg.Kicks
	kicks.VelocityScale = cfg.VelocityScale

	s := &Simulation{
		id:    uuid.New().String(),
		cfg:   cfg,
		nodes: nodes,
		graph: g,
		drift: physics.NewDrift(cfg.Boundary, kicks, perturber, rng),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the unique identifier of this simulation instance
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration the simulation was built with
func (s *Simulation) Config() Config {
	return s.cfg
}

// NodeCount returns the fixed number of nodes
func (s *Simulation) NodeCount() int {
	return s.nodes.Len()
}

// Edges returns the fixed edge list
func (s *Simulation) Edges() []models.Edge {
	return s.graph.Edges()
}

// Graph returns the fixed neighbor graph
func (s *Simulation) Graph() *graph.Graph {
	return s.graph
}

// Noise returns the name of the kick source in use
func (s *Simulation) Noise() string {
	return s.drift.GetName()
}

// Advance runs one tick: every node is steered, maybe kicked, then moved by
// its velocity. The returned snapshot owns its slices.
func (s *Simulation) Advance() models.FrameSnapshot {
	s.drift.Step(s.nodes)

	now := float64(s.clock().UnixNano()) / float64(time.Millisecond)
	positions := s.nodes.Positions()

	return models.FrameSnapshot{
		SimulationID: s.id,
		Tick:         s.drift.Ticks(),
		Time:         now,
		Positions:    positions,
		Color:        render.ColorCycle(now),
		Edges:        s.graph.Edges(),
		EdgeSegments: s.graph.Segments(positions),
	}
}
