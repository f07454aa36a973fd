package geometry

import (
	"math"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := NewRect(10, 20, 100, 140)

	tests := []struct {
		name     string
		point    Point
		expected bool
	}{
		{"center", Point{X: 60, Y: 90}, true},
		{"top-left corner", Point{X: 10, Y: 20}, true},
		{"bottom-right corner", Point{X: 110, Y: 160}, true},
		{"left of rect", Point{X: 9, Y: 90}, false},
		{"below rect", Point{X: 60, Y: 161}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.point); got != tt.expected {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.expected)
			}
		})
	}
}

func TestRectCenter(t *testing.T) {
	r := NewRect(10, 20, 100, 140)
	c := r.Center()
	if c.X != 60 || c.Y != 90 {
		t.Errorf("Center() = %v, want {60 90}", c)
	}
}

func TestRectIntersects(t *testing.T) {
	base := NewRect(0, 0, 50, 50)

	tests := []struct {
		name     string
		other    Rect
		expected bool
	}{
		{"overlapping", NewRect(25, 25, 50, 50), true},
		{"contained", NewRect(10, 10, 10, 10), true},
		{"disjoint", NewRect(100, 100, 10, 10), false},
		{"edge touching", NewRect(50, 0, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expected {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.expected)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 30, 10, 10)
	u := a.Union(b)
	want := NewRect(0, 0, 30, 40)
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
}

func TestRectScale(t *testing.T) {
	r := NewRect(10, 20, 100, 140).Scale(0.5)
	want := NewRect(5, 10, 50, 70)
	if r != want {
		t.Errorf("Scale(0.5) = %+v, want %+v", r, want)
	}
}

func TestPointDistance(t *testing.T) {
	d := Point{X: 0, Y: 0}.Distance(Point{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestRectAspectRatio(t *testing.T) {
	if got := NewRect(0, 0, 100, 140).AspectRatio(); math.Abs(got-100.0/140.0) > 1e-9 {
		t.Errorf("AspectRatio = %v", got)
	}
	if got := NewRect(0, 0, 100, 0).AspectRatio(); got != 0 {
		t.Errorf("AspectRatio of degenerate rect = %v, want 0", got)
	}
}
