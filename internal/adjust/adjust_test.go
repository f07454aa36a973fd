package adjust

import (
	"math"
	"testing"

	"github.com/cardbinder/cardbinder/internal/geometry"
	"github.com/cardbinder/cardbinder/internal/models"
)

func TestClampScale(t *testing.T) {
	tests := []struct {
		name     string
		scale    float64
		expected float64
	}{
		{"below minimum", 0.01, 0.1},
		{"at minimum", 0.1, 0.1},
		{"in range", 1.5, 1.5},
		{"at maximum", 3, 3},
		{"above maximum", 7.2, 3},
		{"negative", -1, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := models.DefaultAdjustment()
			a.Scale = tt.scale
			got := Clamp(a)
			if got.Scale != tt.expected {
				t.Errorf("Clamp scale %v = %v, want %v", tt.scale, got.Scale, tt.expected)
			}
		})
	}
}

func TestClampSliderBounds(t *testing.T) {
	a := models.CardAdjustment{X: -200, Y: 200, Width: 5, Height: 500, Rotation: 720, Scale: 1}
	got := Clamp(a)

	if got.X != MinOffset || got.Y != MaxOffset {
		t.Errorf("position clamp = (%v, %v), want (%v, %v)", got.X, got.Y, MinOffset, MaxOffset)
	}
	if got.Width != MinWidth || got.Height != MaxHeight {
		t.Errorf("size clamp = (%v, %v), want (%v, %v)", got.Width, got.Height, MinWidth, MaxHeight)
	}
	if got.Rotation != 720 {
		t.Errorf("rotation should stay unbounded, got %v", got.Rotation)
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		name     string
		deg      float64
		expected float64
	}{
		{"zero", 0, 0},
		{"small positive", 45, 45},
		{"small negative", -45, -45},
		{"half turn", 180, 180},
		{"negative half turn", -180, 180},
		{"three quarters", 270, -90},
		{"negative three quarters", -270, 90},
		{"full turn", 360, 0},
		{"beyond full turn", 405, 45},
		{"multiple turns", 360*3 + 30, 30},
		{"negative multiple turns", -360*2 - 30, -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRotation(tt.deg)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("NormalizeRotation(%v) = %v, want %v", tt.deg, got, tt.expected)
			}
			if got <= -180 || got > 180 {
				t.Errorf("NormalizeRotation(%v) = %v, outside (-180, 180]", tt.deg, got)
			}
		})
	}
}

func TestRotateAccumulates(t *testing.T) {
	a := models.DefaultAdjustment()
	for i := 0; i < 30; i++ {
		a = Rotate(a, RotationStep)
	}
	if a.Rotation != 450 {
		t.Errorf("accumulated rotation = %v, want 450", a.Rotation)
	}
	if got := NormalizeRotation(a.Rotation); got != 90 {
		t.Errorf("display rotation = %v, want 90", got)
	}
}

func TestRescaleClamps(t *testing.T) {
	a := models.DefaultAdjustment()
	for i := 0; i < 100; i++ {
		a = Rescale(a, ScaleStep)
	}
	if a.Scale != MaxScale {
		t.Errorf("scale after repeated increase = %v, want %v", a.Scale, MaxScale)
	}
	for i := 0; i < 100; i++ {
		a = Rescale(a, -ScaleStep)
	}
	if a.Scale != MinScale {
		t.Errorf("scale after repeated decrease = %v, want %v", a.Scale, MinScale)
	}
}

// The baseline-delta quirk: an adjustment carrying the 100x140 baseline size
// contributes nothing to the rendered dimensions.
func TestEffectiveRectBaseline(t *testing.T) {
	bounds := geometry.NewRect(10, 10, 100, 140)
	a := models.CardAdjustment{X: 5, Y: 0, Width: 100, Height: 140, Rotation: 0, Scale: 1}

	got := EffectiveRect(bounds, a, 1)
	want := geometry.NewRect(15, 10, 100, 140)
	if got != want {
		t.Errorf("EffectiveRect = %+v, want %+v", got, want)
	}
}

func TestEffectiveRectDeltaAndScale(t *testing.T) {
	bounds := geometry.NewRect(20, 30, 100, 140)
	a := models.CardAdjustment{X: -10, Y: 10, Width: 120, Height: 150, Scale: 1}

	got := EffectiveRect(bounds, a, 2)
	want := geometry.NewRect(20, 80, 240, 300)
	if got != want {
		t.Errorf("EffectiveRect = %+v, want %+v", got, want)
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		name                   string
		imgW, imgH             float64
		containerW, containerH float64
		expected               float64
	}{
		{"wide image limited by width", 1000, 500, 500, 500, 0.45},
		{"tall image limited by height", 500, 1000, 500, 500, 0.45},
		{"square fits at 90%", 100, 100, 100, 100, 0.9},
		{"degenerate image", 0, 100, 100, 100, 1},
		{"degenerate container", 100, 100, 100, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitScale(tt.imgW, tt.imgH, tt.containerW, tt.containerH)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("FitScale = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRectTransformIdentity(t *testing.T) {
	r := geometry.NewRect(10, 10, 100, 140)
	tr := RectTransform(r, 0, 1)
	p := geometry.Point{X: 42, Y: 17}
	got := tr.Apply(p)
	if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
		t.Errorf("identity transform moved point: %v -> %v", p, got)
	}
}

func TestRectTransformPreservesCenter(t *testing.T) {
	r := geometry.NewRect(10, 10, 100, 140)
	c := r.Center()

	for _, rot := range []float64{0, 45, 90, 180, -135} {
		for _, scale := range []float64{0.5, 1, 2} {
			tr := RectTransform(r, rot, scale)
			got := tr.Apply(c)
			if math.Abs(got.X-c.X) > 1e-9 || math.Abs(got.Y-c.Y) > 1e-9 {
				t.Errorf("rot=%v scale=%v moved center %v -> %v", rot, scale, c, got)
			}
		}
	}
}

func TestCornersQuarterTurn(t *testing.T) {
	r := geometry.NewRect(0, 0, 100, 140)
	corners := Corners(r, 90, 1)

	// After a 90 degree turn about the center (50, 70), the top-left corner
	// lands at (120, 20).
	got := corners[0]
	if math.Abs(got.X-120) > 1e-9 || math.Abs(got.Y-20) > 1e-9 {
		t.Errorf("rotated top-left = %v, want {120 20}", got)
	}
}
