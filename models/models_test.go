package models

import (
	"math"
	"testing"
)

func TestNewEdge(t *testing.T) {
	t.Run("orders endpoints", func(t *testing.T) {
		e := NewEdge(7, 3)
		if e.A != 3 || e.B != 7 {
			t.Errorf("expected (3,7), got (%d,%d)", e.A, e.B)
		}
	})

	t.Run("keeps ordered endpoints", func(t *testing.T) {
		e := NewEdge(1, 2)
		if e.A != 1 || e.B != 2 {
			t.Errorf("expected (1,2), got (%d,%d)", e.A, e.B)
		}
	})
}

func TestVec3(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	if got := a.Add(b); got != (Vec3{X: 5, Y: 8, Z: 6}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := b.Sub(a); got != (Vec3{X: 3, Y: 4, Z: 0}) {
		t.Errorf("Sub: got %+v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Scale: got %+v", got)
	}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance: expected 5, got %f", got)
	}

	t.Run("axis access", func(t *testing.T) {
		for i, want := range []float64{1, 2, 3} {
			if got := a.Axis(i); got != want {
				t.Errorf("Axis(%d): expected %f, got %f", i, want, got)
			}
		}
		c := a.WithAxis(1, -9)
		if c.Y != -9 || a.Y != 2 {
			t.Errorf("WithAxis should copy: got %+v, original %+v", c, a)
		}
	})

	t.Run("axis out of range panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		a.Axis(3)
	})
}

func TestHSL(t *testing.T) {
	tests := []struct {
		name string
		in   HSL
		hex  string
	}{
		{"red", HSL{H: 0, S: 100, L: 50}, "#ff0000"},
		{"green", HSL{H: 120, S: 100, L: 50}, "#00ff00"},
		{"blue", HSL{H: 240, S: 100, L: 50}, "#0000ff"},
		{"white", HSL{H: 77, S: 40, L: 100}, "#ffffff"},
		{"grey", HSL{H: 200, S: 0, L: 50}, "#808080"},
		{"wrapped hue", HSL{H: 480, S: 100, L: 50}, "#00ff00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Hex(); got != tt.hex {
				t.Errorf("expected %s, got %s", tt.hex, got)
			}
		})
	}

	if css := (HSL{H: 10, S: 70, L: 75}).CSS(); css != "hsl(10.00, 70.00%, 75.00%)" {
		t.Errorf("unexpected CSS %q", css)
	}
}

func TestFrameSnapshotQueries(t *testing.T) {
	snap := &FrameSnapshot{
		Positions: []Vec3{{X: -1, Y: 2, Z: 0}, {X: 3, Y: -4, Z: 1}, {X: 0, Y: 0, Z: -2}},
		Edges:     []Edge{{A: 0, B: 1}, {A: 1, B: 2}},
		EdgeSegments: []Segment{
			{From: Vec3{X: -1, Y: 2, Z: 0}, To: Vec3{X: 3, Y: -4, Z: 1}},
			{From: Vec3{X: 3, Y: -4, Z: 1}, To: Vec3{X: 0, Y: 0, Z: -2}},
		},
	}

	if snap.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", snap.NodeCount())
	}

	if _, err := snap.Position(3); err == nil {
		t.Error("expected error for unknown node")
	}

	seg, err := snap.Segment(2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.To.Z != -2 {
		t.Errorf("expected segment to end at node 2, got %+v", seg)
	}
	if _, err := snap.Segment(0, 2); err == nil {
		t.Error("expected error for missing edge")
	}

	touching := snap.FilterEdges(func(e Edge) bool { return e.A == 0 || e.B == 0 })
	if len(touching) != 1 {
		t.Errorf("expected 1 edge touching node 0, got %d", len(touching))
	}

	lo, hi := snap.Extent()
	if lo != (Vec3{X: -1, Y: -4, Z: -2}) || hi != (Vec3{X: 3, Y: 2, Z: 1}) {
		t.Errorf("unexpected extent %+v %+v", lo, hi)
	}
	if math.IsNaN(lo.X) {
		t.Error("extent should not be NaN")
	}
}
