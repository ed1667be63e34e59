package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/TFMV/nodefield/models"
)

var (
	// ErrNoNodes is returned when building from an empty snapshot
	ErrNoNodes = errors.New("graph: no nodes")
	// ErrInvalidK is returned when k is not in (0, nodeCount)
	ErrInvalidK = errors.New("graph: k must satisfy 0 < k < node count")
)

// Graph is a fixed undirected edge set derived from one position snapshot.
// It is never modified after Build returns.
type Graph struct {
	edges  []models.Edge
	degree []int
}

type candidate struct {
	idx  int
	dist float64
}

// Build connects every node to its k nearest neighbors.
// Each node scans all others, so the same pair may be discovered from both
// ends; such duplicates are collapsed into a single edge.
func Build(positions []models.Vec3, k int) (*Graph, error) {
	n := len(positions)
	if n == 0 {
		return nil, ErrNoNodes
	}
	if k <= 0 || k >= n {
		return nil, fmt.Errorf("%w: k=%d, nodes=%d", ErrInvalidK, k, n)
	}

	seen := make(map[models.Edge]struct{}, n*k)
	edges := make([]models.Edge, 0, n*k)
	dists := make([]candidate, n)

	for i := range positions {
		for j := range positions {
			d := math.Inf(1)
			if i != j {
				d = positions[i].Distance(positions[j])
			}
			dists[j] = candidate{idx: j, dist: d}
		}
		sort.SliceStable(dists, func(a, b int) bool {
			return dists[a].dist < dists[b].dist
		})

		for _, c := range dists[:k] {
			e := models.NewEdge(i, c.idx)
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}

	sort.Slice(edges, func(a, b int) bool {
		if edges[a].A != edges[b].A {
			return edges[a].A < edges[b].A
		}
		return edges[a].B < edges[b].B
	})

	degree := make([]int, n)
	for _, e := range edges {
		degree[e.A]++
		degree[e.B]++
	}

	return &Graph{edges: edges, degree: degree}, nil
}

// Edges returns a copy of the edge list sorted by (A, B)
func (g *Graph) Edges() []models.Edge {
	out := make([]models.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Segments resolves every edge against the given positions
func (g *Graph) Segments(positions []models.Vec3) []models.Segment {
	segments := make([]models.Segment, len(g.edges))
	for i, e := range g.edges {
		segments[i] = models.Segment{From: positions[e.A], To: positions[e.B]}
	}
	return segments
}

// Degrees returns the degree of every node indexed by id
func (g *Graph) Degrees() []int {
	out := make([]int, len(g.degree))
	copy(out, g.degree)
	return out
}
