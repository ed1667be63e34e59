// Package models provides data structures shared by the nodefield packages.
// It defines the value types that flow from the simulation engine to renderers.
package models

// Vec3 is a point or direction in simulation space
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Edge represents an undirected connection between two nodes. A is always less than B.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Segment is an edge resolved to the current positions of its endpoints
type Segment struct {
	From Vec3 `json:"from"`
	To   Vec3 `json:"to"`
}

// HSL is a color in hue (degrees), saturation (%) and lightness (%)
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// FrameSnapshot is the render-ready state of one simulation tick
type FrameSnapshot struct {
	SimulationID string    `json:"simulation_id"`
	Tick         uint64    `json:"tick"`
	Time         float64   `json:"time"` // milliseconds since the Unix epoch
	Positions    []Vec3    `json:"positions"`
	Color        HSL       `json:"color"`
	Edges        []Edge    `json:"edges"`
	EdgeSegments []Segment `json:"edge_segments"` // parallel to Edges
}
