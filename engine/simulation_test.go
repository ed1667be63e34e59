package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/TFMV/nodefield/models"
	"github.com/TFMV/nodefield/render"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero nodes", func(c *Config) { c.NodeCount = 0 }, ErrInvalidNodeCount},
		{"negative nodes", func(c *Config) { c.NodeCount = -3 }, ErrInvalidNodeCount},
		{"zero k", func(c *Config) { c.K = 0 }, ErrInvalidK},
		{"k equals nodes", func(c *Config) { c.NodeCount, c.K = 8, 8 }, ErrInvalidK},
		{"k above nodes", func(c *Config) { c.NodeCount, c.K = 4, 9 }, ErrInvalidK},
		{"zero velocity scale", func(c *Config) { c.VelocityScale = 0 }, ErrInvalidVelocityScale},
		{"unknown noise", func(c *Config) { c.Noise = "perlin" }, ErrInvalidNoise},
		{"probability above one", func(c *Config) { c.Kicks.Probability = 2 }, ErrInvalidNoise},
		{"inverted clamp", func(c *Config) { c.Kicks.Min = 1 }, ErrInvalidNoise},
		{"margin too wide", func(c *Config) { c.Boundary.Soft.X = 11 }, ErrInvalidBoundary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			sim, err := New(cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if sim != nil {
				t.Error("no simulation should be returned on error")
			}
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestNewSimulation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 11

	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sim.NodeCount() != 80 {
		t.Errorf("expected 80 nodes, got %d", sim.NodeCount())
	}
	if len(sim.Edges()) < 80*8/2 {
		t.Errorf("expected at least %d edges, got %d", 80*8/2, len(sim.Edges()))
	}
	if sim.ID() == "" {
		t.Error("expected a simulation id")
	}

	t.Run("same seed same graph", func(t *testing.T) {
		other, err := New(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, b := sim.Edges(), other.Edges()
		if len(a) != len(b) {
			t.Fatalf("edge counts differ: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("edge %d differs: %v vs %v", i, a[i], b[i])
			}
		}
		if sim.ID() == other.ID() {
			t.Error("each simulation should get its own id")
		}
	})

	t.Run("simplex noise source", func(t *testing.T) {
		c := cfg
		c.Noise = "simplex"
		if _, err := New(c); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("four nodes one neighbor", func(t *testing.T) {
		c := DefaultConfig()
		c.NodeCount, c.K = 4, 1
		for seed := uint64(1); seed <= 10; seed++ {
			c.Seed = seed
			s, err := New(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := len(s.Edges()); n < 1 || n > 3 {
				t.Errorf("seed %d: expected 1..3 edges, got %d", seed, n)
			}
		}
	})
}

func TestAdvance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 5
	sim, err := New(cfg, WithClock(fixedClock(1_700_000_000_000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := sim.Advance()
	second := sim.Advance()

	if first.Color != second.Color {
		t.Errorf("same clock should give same color: %+v vs %+v", first.Color, second.Color)
	}
	if first.Color != render.ColorCycle(1_700_000_000_000) {
		t.Errorf("color should come from the clock, got %+v", first.Color)
	}
	if first.Time != 1_700_000_000_000 {
		t.Errorf("expected frame time in ms, got %f", first.Time)
	}
	if first.Tick != 1 || second.Tick != 2 {
		t.Errorf("expected ticks 1 and 2, got %d and %d", first.Tick, second.Tick)
	}
	if first.SimulationID != sim.ID() {
		t.Error("snapshot should carry the simulation id")
	}

	moved := 0
	for i := range first.Positions {
		step := second.Positions[i].Sub(first.Positions[i])
		for axis := 0; axis < 3; axis++ {
			if math.Abs(step.Axis(axis)) > 0.03 {
				t.Errorf("node %d axis %d moved %g in one tick", i, axis, step.Axis(axis))
			}
		}
		if step != (models.Vec3{}) {
			moved++
		}
	}
	if moved == 0 {
		t.Error("positions should integrate on every call")
	}

	t.Run("segments follow positions", func(t *testing.T) {
		if len(second.Edges) != len(second.EdgeSegments) {
			t.Fatalf("edges and segments differ in length")
		}
		for i, e := range second.Edges {
			seg := second.EdgeSegments[i]
			if seg.From != second.Positions[e.A] || seg.To != second.Positions[e.B] {
				t.Errorf("segment %d does not match edge %v", i, e)
			}
		}
	})

	t.Run("snapshots are independent", func(t *testing.T) {
		before := first.Positions[0]
		sim.Advance()
		if first.Positions[0] != before {
			t.Error("advancing must not mutate earlier snapshots")
		}
	})
}

func TestAdvanceLongRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 21
	cfg.Kicks.Probability = 1
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prev := sim.Advance()
	for i := 0; i < 3000; i++ {
		frame := sim.Advance()
		c := frame.Color
		if c.S < 60 || c.S > 80 || c.L < 65 || c.L > 85 {
			t.Fatalf("color out of range: %+v", c)
		}

		// every node is kicked each tick, so each step is a clamped velocity
		for id := range frame.Positions {
			step := frame.Positions[id].Sub(prev.Positions[id])
			for axis := 0; axis < 3; axis++ {
				if v := step.Axis(axis); v < -0.03-1e-9 || v > 0.01+1e-9 || math.IsNaN(v) {
					t.Fatalf("tick %d node %d axis %d velocity %g outside clamp", frame.Tick, id, axis, v)
				}
			}
		}
		prev = frame
	}
}
