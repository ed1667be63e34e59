package graph

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/TFMV/nodefield/models"
)

func randomPositions(n int, seed uint64) []models.Vec3 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]models.Vec3, n)
	for i := range out {
		out[i] = models.Vec3{
			X: (rng.Float64() - 0.5) * 18,
			Y: (rng.Float64() - 0.5) * 7,
			Z: (rng.Float64() - 0.5) * 10,
		}
	}
	return out
}

func TestBuildInvariants(t *testing.T) {
	cases := []struct{ n, k int }{
		{2, 1}, {4, 1}, {4, 3}, {10, 3}, {80, 8}, {50, 49},
	}

	for _, c := range cases {
		for seed := uint64(0); seed < 5; seed++ {
			g, err := Build(randomPositions(c.n, seed), c.k)
			if err != nil {
				t.Fatalf("n=%d k=%d: unexpected error: %v", c.n, c.k, err)
			}

			seen := make(map[models.Edge]bool)
			for _, e := range g.Edges() {
				if e.A == e.B {
					t.Errorf("n=%d k=%d: self loop %+v", c.n, c.k, e)
				}
				if e.A >= e.B {
					t.Errorf("n=%d k=%d: edge not ordered %+v", c.n, c.k, e)
				}
				if seen[e] {
					t.Errorf("n=%d k=%d: duplicate edge %+v", c.n, c.k, e)
				}
				seen[e] = true
			}

			// every node contributes at least k edges of its own, so degree >= k
			for id, d := range g.Degrees() {
				if d < c.k {
					t.Errorf("n=%d k=%d: node %d has degree %d", c.n, c.k, id, d)
				}
			}
		}
	}
}

func TestBuildFourNodesOneNeighbor(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		g, err := Build(randomPositions(4, seed), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(g.Edges()) < 1 || len(g.Edges()) > 3 {
			t.Errorf("seed %d: expected 1..3 edges, got %d", seed, len(g.Edges()))
		}
	}
}

func TestBuildKnownLayout(t *testing.T) {
	// two tight pairs far apart: nearest neighbors are mutual
	positions := []models.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.1, Y: 0, Z: 0},
		{X: 5, Y: 0, Z: 0},
		{X: 5.2, Y: 0, Z: 0},
	}

	g, err := Build(positions, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.Edge{{A: 0, B: 1}, {A: 2, B: 3}}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	t.Run("chain adds non-mutual edge", func(t *testing.T) {
		chain := []models.Vec3{
			{X: 0}, {X: 1}, {X: 3}, {X: 6},
		}
		g, err := Build(chain, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 0<->1 mutual, 2->1, 3->2
		if len(g.Edges()) != 3 {
			t.Errorf("expected 3 edges, got %v", g.Edges())
		}
		want := []models.Edge{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}}
		for i, e := range g.Edges() {
			if i >= len(want) || e != want[i] {
				t.Errorf("edge %d: expected %v, got %v", i, want, g.Edges())
				break
			}
		}
	})
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, 1); !errors.Is(err, ErrNoNodes) {
		t.Errorf("expected ErrNoNodes, got %v", err)
	}

	positions := randomPositions(5, 1)
	for _, k := range []int{0, -1, 5, 6} {
		if _, err := Build(positions, k); !errors.Is(err, ErrInvalidK) {
			t.Errorf("k=%d: expected ErrInvalidK, got %v", k, err)
		}
	}
}

func TestGraphQueries(t *testing.T) {
	g, err := Build([]models.Vec3{{X: 0}, {X: 1}, {X: 3}, {X: 6}}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := g.Degrees(); len(got) != 4 || got[0] != 1 || got[1] != 2 || got[2] != 2 || got[3] != 1 {
		t.Errorf("expected degrees [1 2 2 1], got %v", got)
	}
	degrees := g.Degrees()
	degrees[0] = 42
	if g.Degrees()[0] != 1 {
		t.Error("Degrees must return a copy")
	}

	edges := g.Edges()
	edges[0] = models.Edge{A: 98, B: 99}
	if g.Edges()[0] != (models.Edge{A: 0, B: 1}) {
		t.Error("Edges must return a copy")
	}

	segments := g.Segments([]models.Vec3{{X: 0}, {X: 1}, {X: 3}, {X: 6}})
	if len(segments) != len(g.Edges()) || segments[0].To.X != 1 {
		t.Errorf("unexpected segments %+v", segments)
	}
}
