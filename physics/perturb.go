package physics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/TFMV/nodefield/models"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Perturber produces the velocity offset for a kick. Every component must lie
// in [-scale/2, scale/2].
type Perturber interface {
	Offset(node int, pos models.Vec3, tick uint64, scale float64) models.Vec3
	GetName() string
}

// UniformPerturber draws each axis independently and uniformly
type UniformPerturber struct {
	rng *rand.Rand
}

// NewUniformPerturber creates a perturber drawing from rng
func NewUniformPerturber(rng *rand.Rand) *UniformPerturber {
	return &UniformPerturber{rng: rng}
}

// GetName returns the name of the perturber
func (u *UniformPerturber) GetName() string {
	return "uniform"
}

// Offset returns a uniform random offset
func (u *UniformPerturber) Offset(_ int, _ models.Vec3, _ uint64, scale float64) models.Vec3 {
	return uniformOffset(u.rng, scale)
}

// SimplexPerturber samples a coherent noise field so nearby nodes receive
// similar kicks, which reads as gusts sweeping through the field
type SimplexPerturber struct {
	noiseGenerator opensimplex.Noise
	noiseScale     float64
	timeStep       float64
}

// NewSimplexPerturber creates a perturber over an opensimplex field.
// noiseScale converts simulation units into noise-space units.
func NewSimplexPerturber(seed int64, noiseScale float64) *SimplexPerturber {
	return &SimplexPerturber{
		noiseGenerator: opensimplex.New(seed),
		noiseScale:     noiseScale,
		timeStep:       0.01,
	}
}

// GetName returns the name of the perturber
func (s *SimplexPerturber) GetName() string {
	return "simplex"
}

// Offset samples one decorrelated noise channel per axis
func (s *SimplexPerturber) Offset(_ int, pos models.Vec3, tick uint64, scale float64) models.Vec3 {
	t := float64(tick) * s.timeStep
	x := pos.X * s.noiseScale
	y := pos.Y * s.noiseScale
	z := pos.Z * s.noiseScale

	// Eval4 stays close to [-1, 1]; clamp so the kick range is exact
	nx := clampSigned(s.noiseGenerator.Eval4(x, y, z, t))
	ny := clampSigned(s.noiseGenerator.Eval4(x+100, y+100, z, t))
	nz := clampSigned(s.noiseGenerator.Eval4(x, y+50, z+50, t))

	return models.Vec3{X: nx, Y: ny, Z: nz}.Scale(scale / 2)
}

// GetPerturber returns a perturber by name
func GetPerturber(name string, rng *rand.Rand, seed int64, noiseScale float64) (Perturber, error) {
	switch name {
	case "", "uniform":
		return NewUniformPerturber(rng), nil
	case "simplex":
		return NewSimplexPerturber(seed, noiseScale), nil
	default:
		return nil, fmt.Errorf("unknown noise source: %s", name)
	}
}

func clampSigned(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
