package render

import (
	"math"

	"github.com/TFMV/nodefield/models"
)

// CycleSpeed is the number of full hue rotations per millisecond
const CycleSpeed = 0.00005

// ColorCycle returns the pastel color shared by the whole frame at t
// milliseconds. Saturation stays in [60, 80] and lightness in [65, 85].
func ColorCycle(t float64) models.HSL {
	phase := t * CycleSpeed

	hue := math.Mod(phase*360, 360)
	if hue < 0 {
		hue += 360
	}

	return models.HSL{
		H: hue,
		S: 70 + 10*math.Sin(phase*2*math.Pi),
		L: 75 + 10*math.Sin(phase*1.5*math.Pi),
	}
}
