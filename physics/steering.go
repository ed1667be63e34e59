package physics

import (
	"fmt"

	"github.com/TFMV/nodefield/models"
)

// BoundaryParams configures the soft walls around the simulation volume
type BoundaryParams struct {
	Bounds  models.Vec3 // half-extent of the box on each axis
	Soft    models.Vec3 // margin inside Bounds where steering starts
	Gain    float64     // proportional pull per unit past the margin
	Damping float64     // velocity multiplier applied while steering
}

// DefaultBoundary returns the standard walls: box (10,5,6), margin 1.5
func DefaultBoundary() BoundaryParams {
	return BoundaryParams{
		Bounds:  models.Vec3{X: 10, Y: 5, Z: 6},
		Soft:    models.Vec3{X: 1.5, Y: 1.5, Z: 1.5},
		Gain:    0.01,
		Damping: 0.95,
	}
}

// Validate checks that every margin leaves a non-empty interior
func (p BoundaryParams) Validate() error {
	for axis := 0; axis < 3; axis++ {
		b, s := p.Bounds.Axis(axis), p.Soft.Axis(axis)
		if b <= 0 || s < 0 || s >= b {
			return fmt.Errorf("axis %d: need 0 <= soft < bound, got soft=%g bound=%g", axis, s, b)
		}
	}
	if p.Damping <= 0 || p.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %g", p.Damping)
	}
	if p.Gain < 0 {
		return fmt.Errorf("gain must not be negative, got %g", p.Gain)
	}
	return nil
}

// Steer returns the velocity after soft-wall correction. Position is never
// clamped, so a fast node may still overshoot the nominal bound.
func Steer(pos, vel models.Vec3, p BoundaryParams) models.Vec3 {
	for axis := 0; axis < 3; axis++ {
		x := pos.Axis(axis)
		v := vel.Axis(axis)
		lower := -p.Bounds.Axis(axis) + p.Soft.Axis(axis)
		upper := p.Bounds.Axis(axis) - p.Soft.Axis(axis)

		switch {
		case x < lower:
			v += p.Gain * (lower - x)
			v *= p.Damping
		case x > upper:
			v -= p.Gain * (x - upper)
			v *= p.Damping
		default:
			continue
		}
		vel = vel.WithAxis(axis, v)
	}
	return vel
}
