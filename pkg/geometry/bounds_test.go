package geometry

import (
	"math"
	"testing"
)

func TestBoundingBoxExtend(t *testing.T) {
	bbox := NewBoundingBox()

	bbox.Extend(NewVector3(1, 2, 3))
	bbox.Extend(NewVector3(4, 5, 6))
	bbox.Extend(NewVector3(-1, 0, 2))

	expectedMin := NewVector3(-1, 0, 2)
	expectedMax := NewVector3(4, 5, 6)

	if bbox.Min != expectedMin {
		t.Errorf("Min failed: expected %v, got %v", expectedMin, bbox.Min)
	}
	if bbox.Max != expectedMax {
		t.Errorf("Max failed: expected %v, got %v", expectedMax, bbox.Max)
	}
}

func TestBoundingBoxSize(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(NewVector3(0, 0, 0))
	bbox.Extend(NewVector3(10, 20, 30))

	size := bbox.Size()
	expected := NewVector3(10, 20, 30)

	if size != expected {
		t.Errorf("Size failed: expected %v, got %v", expected, size)
	}
}

func TestBoundingBoxCenter(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(NewVector3(0, 0, 0))
	bbox.Extend(NewVector3(10, 20, 30))

	center := bbox.Center()
	expected := NewVector3(5, 10, 15)

	if center != expected {
		t.Errorf("Center failed: expected %v, got %v", expected, center)
	}
}

func TestBoundingBoxBoxVolume(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(NewVector3(0, 0, 0))
	bbox.Extend(NewVector3(2, 3, 4))

	volume := bbox.Volume()
	expected := 24.0 // 2 * 3 * 4 = 24

	if math.Abs(volume-expected) > 1e-10 {
		t.Errorf("Volume failed: expected %v, got %v", expected, volume)
	}
}

func TestBoundingBoxPlaneSide(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(NewVector3(0, 0, 0))
	bbox.Extend(NewVector3(1, 1, 1))

	cases := []struct {
		name     string
		plane    Plane
		expected int
	}{
		{"above", NewPlane(NewVector3(0, 0, 2), NewVector3(0, 0, 1)), -1},
		{"below", NewPlane(NewVector3(0, 0, -1), NewVector3(0, 0, 1)), 1},
		{"through", NewPlane(NewVector3(0, 0, 0.5), NewVector3(0, 0, 1)), 0},
		{"touching", NewPlane(NewVector3(0, 0, 1), NewVector3(0, 0, 1)), 0},
	}
	for _, tc := range cases {
		if side := bbox.PlaneSide(tc.plane, 1e-9); side != tc.expected {
			t.Errorf("%s: expected side %d, got %d", tc.name, tc.expected, side)
		}
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	bbox := NewBoundingBox()
	if !bbox.IsEmpty() {
		t.Errorf("new bounding box should be empty")
	}
	bbox.Extend(NewVector3(1, 2, 3))
	if bbox.IsEmpty() {
		t.Errorf("bounding box with a point should not be empty")
	}
	if !bbox.Contains(NewVector3(1, 2, 3)) {
		t.Errorf("bounding box should contain its only point")
	}
}
