// Package adjust implements the geometric adjustment model applied to
// detected cards during review: clamping, rotation normalization, and the
// render-time transform from detected bounds plus adjustment to an effective
// on-screen rectangle.
package adjust

import (
	"math"

	"github.com/cardbinder/cardbinder/internal/geometry"
	"github.com/cardbinder/cardbinder/internal/models"
)

// Slider bounds for the review toolbar. Scale is a hard invariant; the
// remaining bounds mirror the toolbar ranges.
const (
	MinScale = 0.1
	MaxScale = 3.0

	ScaleStep    = 0.1
	RotationStep = 15.0

	MinOffset = -50.0
	MaxOffset = 50.0

	MinWidth  = 20.0
	MaxWidth  = 200.0
	MinHeight = 28.0
	MaxHeight = 280.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp returns the adjustment with every field forced into its toolbar
// range. Rotation is left unbounded; NormalizeRotation maps it for display.
func Clamp(a models.CardAdjustment) models.CardAdjustment {
	a.X = clamp(a.X, MinOffset, MaxOffset)
	a.Y = clamp(a.Y, MinOffset, MaxOffset)
	a.Width = clamp(a.Width, MinWidth, MaxWidth)
	a.Height = clamp(a.Height, MinHeight, MaxHeight)
	a.Scale = clamp(a.Scale, MinScale, MaxScale)
	return a
}

// NormalizeRotation maps an unbounded rotation in degrees into (-180, 180]
// for display. The stored rotation keeps accumulating; only the shown value
// is wrapped.
func NormalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r > 180 {
		r -= 360
	} else if r <= -180 {
		r += 360
	}
	return r
}

// Rotate adds delta degrees to the adjustment.
func Rotate(a models.CardAdjustment, delta float64) models.CardAdjustment {
	a.Rotation += delta
	return a
}

// Rescale adds delta to the scale factor, clamped to [MinScale, MaxScale].
func Rescale(a models.CardAdjustment, delta float64) models.CardAdjustment {
	a.Scale = clamp(a.Scale+delta, MinScale, MaxScale)
	return a
}

// Nudge offsets the adjustment position by (dx, dy) in image-space units,
// clamped to the toolbar range.
func Nudge(a models.CardAdjustment, dx, dy float64) models.CardAdjustment {
	a.X = clamp(a.X+dx, MinOffset, MaxOffset)
	a.Y = clamp(a.Y+dy, MinOffset, MaxOffset)
	return a
}

// EffectiveRect computes the on-screen rectangle for a card: detected bounds
// offset by the adjustment position, sized by the adjustment's delta from the
// 100x140 baseline, then scaled into display space. Rotation and scale are
// applied separately about the rect center (see Transform).
func EffectiveRect(bounds geometry.Rect, a models.CardAdjustment, displayScale float64) geometry.Rect {
	return geometry.Rect{
		X:      (bounds.X + a.X) * displayScale,
		Y:      (bounds.Y + a.Y) * displayScale,
		Width:  (bounds.Width + a.Width - models.BaselineWidth) * displayScale,
		Height: (bounds.Height + a.Height - models.BaselineHeight) * displayScale,
	}
}

// FitScale returns the display scale that fits an image into a container
// while preserving aspect ratio, capped at 90% of the container dimensions.
// Degenerate inputs yield a scale of 1.
func FitScale(imageW, imageH, containerW, containerH float64) float64 {
	if imageW <= 0 || imageH <= 0 || containerW <= 0 || containerH <= 0 {
		return 1
	}
	sx := containerW * 0.9 / imageW
	sy := containerH * 0.9 / imageH
	return math.Min(sx, sy)
}

// Transform is a 2D affine transform in row-major [a b tx; c d ty] form.
type Transform struct {
	A, B, Tx float64
	C, D, Ty float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// Apply maps a point through the transform.
func (t Transform) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: t.A*p.X + t.B*p.Y + t.Tx,
		Y: t.C*p.X + t.D*p.Y + t.Ty,
	}
}

// RectTransform builds the render transform for a card rect: translate to the
// rect center, rotate, scale, translate back. Renderers apply it to the rect's
// corners before drawing.
func RectTransform(r geometry.Rect, rotationDeg, scale float64) Transform {
	c := r.Center()
	rad := rotationDeg * math.Pi / 180
	cos := math.Cos(rad) * scale
	sin := math.Sin(rad) * scale
	return Transform{
		A: cos, B: -sin, Tx: c.X - cos*c.X + sin*c.Y,
		C: sin, D: cos, Ty: c.Y - sin*c.X - cos*c.Y,
	}
}

// Corners returns the rect's four corners after rotation and scaling about
// its center, in clockwise order from the top-left.
func Corners(r geometry.Rect, rotationDeg, scale float64) [4]geometry.Point {
	t := RectTransform(r, rotationDeg, scale)
	return [4]geometry.Point{
		t.Apply(geometry.Point{X: r.X, Y: r.Y}),
		t.Apply(geometry.Point{X: r.X + r.Width, Y: r.Y}),
		t.Apply(geometry.Point{X: r.X + r.Width, Y: r.Y + r.Height}),
		t.Apply(geometry.Point{X: r.X, Y: r.Y + r.Height}),
	}
}
