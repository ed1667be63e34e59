package physics

import (
	"fmt"
	"math/rand/v2"

	"github.com/TFMV/nodefield/models"
)

// SpawnExtent holds the half-extents of the box new nodes are placed in
var SpawnExtent = models.Vec3{X: 9, Y: 3.5, Z: 5}

// NodeSet owns the positions and velocities of a fixed number of nodes
type NodeSet struct {
	positions  []models.Vec3
	velocities []models.Vec3
}

// NewNodeSet places nodeCount nodes uniformly in the spawn box with velocities
// uniform in [-velocityScale/2, velocityScale/2] per axis
func NewNodeSet(nodeCount int, velocityScale float64, rng *rand.Rand) (*NodeSet, error) {
	if nodeCount <= 0 {
		return nil, fmt.Errorf("node count must be positive, got %d", nodeCount)
	}
	if velocityScale <= 0 {
		return nil, fmt.Errorf("velocity scale must be positive, got %g", velocityScale)
	}

	ns := &NodeSet{
		positions:  make([]models.Vec3, nodeCount),
		velocities: make([]models.Vec3, nodeCount),
	}
	for i := 0; i < nodeCount; i++ {
		ns.positions[i] = models.Vec3{
			X: (rng.Float64() - 0.5) * 2 * SpawnExtent.X,
			Y: (rng.Float64() - 0.5) * 2 * SpawnExtent.Y,
			Z: (rng.Float64() - 0.5) * 2 * SpawnExtent.Z,
		}
		ns.velocities[i] = uniformOffset(rng, velocityScale)
	}
	return ns, nil
}

// Len returns the number of nodes
func (ns *NodeSet) Len() int {
	return len(ns.positions)
}

// Positions returns a copy of all positions indexed by node id
func (ns *NodeSet) Positions() []models.Vec3 {
	out := make([]models.Vec3, len(ns.positions))
	copy(out, ns.positions)
	return out
}

func uniformOffset(rng *rand.Rand, scale float64) models.Vec3 {
	return models.Vec3{
		X: (rng.Float64() - 0.5) * scale,
		Y: (rng.Float64() - 0.5) * scale,
		Z: (rng.Float64() - 0.5) * scale,
	}
}
