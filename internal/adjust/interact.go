package adjust

import "github.com/cardbinder/cardbinder/internal/geometry"

// Mode is the active tool on the review surface. Modes are mutually
// exclusive; toggling the active mode returns to idle.
type Mode string

const (
	ModeIdle   Mode = ""
	ModeMove   Mode = "move"
	ModeCrop   Mode = "crop"
	ModeRotate Mode = "rotate"
)

// RenderedCard pairs a card id with its adjusted rectangle in display space,
// in render order (later entries draw on top).
type RenderedCard struct {
	ID   string
	Rect geometry.Rect
}

// Interaction tracks pointer state for one review surface. It is not
// safe for concurrent use; one instance belongs to one surface.
type Interaction struct {
	mode         Mode
	displayScale float64

	dragging bool
	dragCard string
	lastX    float64
	lastY    float64
}

// NewInteraction returns an idle interaction at the given display scale.
func NewInteraction(displayScale float64) *Interaction {
	if displayScale <= 0 {
		displayScale = 1
	}
	return &Interaction{displayScale: displayScale}
}

// Mode returns the current tool mode.
func (s *Interaction) Mode() Mode {
	return s.mode
}

// SetDisplayScale updates the scale used to convert pointer deltas into
// image-space units. Called whenever the surface is re-fit.
func (s *Interaction) SetDisplayScale(scale float64) {
	if scale > 0 {
		s.displayScale = scale
	}
}

// ToggleMode activates m, or returns to idle when m is already active.
// Any in-progress drag is abandoned.
func (s *Interaction) ToggleMode(m Mode) Mode {
	if s.mode == m {
		s.mode = ModeIdle
	} else {
		s.mode = m
	}
	s.endDrag()
	return s.mode
}

// HitTest returns the topmost card containing the pointer, searching in
// reverse render order so the last-drawn card wins ties.
func HitTest(cards []RenderedCard, p geometry.Point) (string, bool) {
	for i := len(cards) - 1; i >= 0; i-- {
		if cards[i].Rect.Contains(p) {
			return cards[i].ID, true
		}
	}
	return "", false
}

// PointerDown begins a drag when in move mode and the pointer hits a card.
// It returns the hit card id. Outside move mode no drag starts even on a hit.
func (s *Interaction) PointerDown(x, y float64, cards []RenderedCard) (string, bool) {
	id, ok := HitTest(cards, geometry.Point{X: x, Y: y})
	if !ok {
		return "", false
	}
	if s.mode == ModeMove {
		s.dragging = true
		s.dragCard = id
		s.lastX = x
		s.lastY = y
	}
	return id, true
}

// PointerMove advances an active drag and returns the image-space delta to
// add to the dragged card's adjustment. Pointer deltas arrive in display
// pixels and are divided by the display scale.
func (s *Interaction) PointerMove(x, y float64) (id string, dx, dy float64, ok bool) {
	if !s.dragging {
		return "", 0, 0, false
	}
	dx = (x - s.lastX) / s.displayScale
	dy = (y - s.lastY) / s.displayScale
	s.lastX = x
	s.lastY = y
	return s.dragCard, dx, dy, true
}

// PointerUp ends any active drag.
func (s *Interaction) PointerUp() {
	s.endDrag()
}

func (s *Interaction) endDrag() {
	s.dragging = false
	s.dragCard = ""
}

// Dragging reports whether a drag is in progress.
func (s *Interaction) Dragging() bool {
	return s.dragging
}
