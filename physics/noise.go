package physics

import (
	"fmt"
	"math"

	"github.com/TFMV/nodefield/models"
)

// NoiseParams configures random velocity kicks
type NoiseParams struct {
	Probability   float64 // chance per node per tick of a kick
	VelocityScale float64 // kick offsets lie in [-VelocityScale/2, VelocityScale/2]
	Min           float64 // lower velocity clamp per axis
	Max           float64 // upper velocity clamp per axis
}

// DefaultNoise returns the standard kick settings. The clamp range is
// asymmetric: [-0.03, 0.01].
func DefaultNoise(velocityScale float64) NoiseParams {
	return NoiseParams{
		Probability:   0.01,
		VelocityScale: velocityScale,
		Min:           -0.03,
		Max:           0.01,
	}
}

// Validate checks the probability and clamp range
func (p NoiseParams) Validate() error {
	if p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("probability must be in [0, 1], got %g", p.Probability)
	}
	if p.Min >= p.Max {
		return fmt.Errorf("velocity clamp min %g must be below max %g", p.Min, p.Max)
	}
	if p.VelocityScale <= 0 {
		return fmt.Errorf("velocity scale must be positive, got %g", p.VelocityScale)
	}
	return nil
}

// Inject applies a kick when fire is set: offset is added and every axis is
// clamped to [Min, Max]. When fire is false vel is returned untouched.
func Inject(vel models.Vec3, fire bool, offset models.Vec3, p NoiseParams) models.Vec3 {
	if !fire {
		return vel
	}
	v := vel.Add(offset)
	for axis := 0; axis < 3; axis++ {
		v = v.WithAxis(axis, math.Max(p.Min, math.Min(p.Max, v.Axis(axis))))
	}
	return v
}
