package render

import (
	"math"

	"github.com/TFMV/nodefield/models"
)

// Camera is a pinhole camera on the +Z axis looking at the origin
type Camera struct {
	Distance float64 // camera z position
	FOV      float64 // vertical field of view in degrees
}

// DefaultCamera matches the viewer page: camera at z=10, 75° field of view
func DefaultCamera() Camera {
	return Camera{Distance: 10, FOV: 75}
}

// Project maps a simulation point to screen coordinates. depth is the
// distance in front of the camera; ok is false for points behind it.
func (c Camera) Project(p models.Vec3, width, height float64) (x, y, depth float64, ok bool) {
	depth = c.Distance - p.Z
	if depth <= 0 {
		return 0, 0, depth, false
	}

	focal := (height / 2) / math.Tan(c.FOV*math.Pi/360)
	x = width/2 + p.X*focal/depth
	y = height/2 - p.Y*focal/depth
	return x, y, depth, true
}

// depthFactor is 1 at the camera distance and shrinks for farther points
func (c Camera) depthFactor(depth float64) float64 {
	return math.Max(0.2, math.Min(2, c.Distance/depth))
}
