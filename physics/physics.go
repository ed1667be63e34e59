package physics

import (
	"math/rand/v2"
)

// Drift is the per-tick motion model: soft-wall steering, random kicks,
// then explicit integration. One Step moves every node by exactly one
// velocity, independent of wall time.
type Drift struct {
	boundary  BoundaryParams
	noise     NoiseParams
	perturber Perturber
	rng       *rand.Rand
	tick      uint64
}

// NewDrift creates a motion model. rng drives the kick probability roll.
func NewDrift(boundary BoundaryParams, noise NoiseParams, perturber Perturber, rng *rand.Rand) *Drift {
	return &Drift{
		boundary:  boundary,
		noise:     noise,
		perturber: perturber,
		rng:       rng,
	}
}

// GetName returns the name of the perturbation source in use
func (d *Drift) GetName() string {
	return d.perturber.GetName()
}

// Ticks returns the number of completed steps
func (d *Drift) Ticks() uint64 {
	return d.tick
}

// Step advances every node of ns in place
func (d *Drift) Step(ns *NodeSet) {
	for i := range ns.positions {
		pos := ns.positions[i]
		vel := Steer(pos, ns.velocities[i], d.boundary)

		if d.rng.Float64() < d.noise.Probability {
			offset := d.perturber.Offset(i, pos, d.tick, d.noise.VelocityScale)
			vel = Inject(vel, true, offset, d.noise)
		}

		ns.velocities[i] = vel
		ns.positions[i] = pos.Add(vel)
	}
	d.tick++
}
