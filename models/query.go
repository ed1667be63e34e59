package models

import (
	"fmt"
)

// EdgeFilter is a function type used to filter edges in queries
type EdgeFilter func(edge Edge) bool

// NodeCount returns the number of nodes in the frame
func (s *FrameSnapshot) NodeCount() int {
	return len(s.Positions)
}

// Position returns the position of a node in this frame
func (s *FrameSnapshot) Position(id int) (Vec3, error) {
	if id < 0 || id >= len(s.Positions) {
		return Vec3{}, fmt.Errorf("node %d not found", id)
	}
	return s.Positions[id], nil
}

// Segment returns the resolved segment for the edge joining a and b
func (s *FrameSnapshot) Segment(a, b int) (Segment, error) {
	want := NewEdge(a, b)
	for i, edge := range s.Edges {
		if edge == want {
			return s.EdgeSegments[i], nil
		}
	}
	return Segment{}, fmt.Errorf("edge (%d,%d) not found", want.A, want.B)
}

// FilterEdges returns the edges that match the provided filter function
func (s *FrameSnapshot) FilterEdges(filter EdgeFilter) []Edge {
	var result []Edge
	for _, edge := range s.Edges {
		if filter(edge) {
			result = append(result, edge)
		}
	}
	return result
}

// Extent returns the componentwise minimum and maximum of all node positions
func (s *FrameSnapshot) Extent() (Vec3, Vec3) {
	if len(s.Positions) == 0 {
		return Vec3{}, Vec3{}
	}
	lo, hi := s.Positions[0], s.Positions[0]
	for _, p := range s.Positions[1:] {
		for axis := 0; axis < 3; axis++ {
			if p.Axis(axis) < lo.Axis(axis) {
				lo = lo.WithAxis(axis, p.Axis(axis))
			}
			if p.Axis(axis) > hi.Axis(axis) {
				hi = hi.WithAxis(axis, p.Axis(axis))
			}
		}
	}
	return lo, hi
}
