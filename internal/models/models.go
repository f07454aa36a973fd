// Package models defines the records shared across the detection, review, and
// catalog layers.
package models

import (
	"time"

	"github.com/cardbinder/cardbinder/internal/geometry"
)

// CardStatus tracks where a detected card sits in the review pipeline.
type CardStatus string

const (
	StatusDetected   CardStatus = "detected"
	StatusProcessing CardStatus = "processing"
	StatusEnhanced   CardStatus = "enhanced"
	StatusError      CardStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s CardStatus) Valid() bool {
	switch s {
	case StatusDetected, StatusProcessing, StatusEnhanced, StatusError:
		return true
	}
	return false
}

// Adjustment width/height values are deltas measured against this baseline,
// not absolute card dimensions. A card whose adjustment carries the baseline
// size renders at exactly its detected bounds.
const (
	BaselineWidth  = 100.0
	BaselineHeight = 140.0
)

// CardAdjustment is a per-card geometric delta applied on top of the detected
// bounds at render time. X/Y offset the detected position in image-space
// units. Width/Height are deltas from the 100x140 baseline (see BaselineWidth).
// Rotation is in degrees and unbounded; Scale multiplies about the rect center.
type CardAdjustment struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// DefaultAdjustment returns the identity adjustment.
func DefaultAdjustment() CardAdjustment {
	return CardAdjustment{
		Width:  BaselineWidth,
		Height: BaselineHeight,
		Scale:  1,
	}
}

// CardMetadata carries the optional identity fields searched by the review
// filter.
type CardMetadata struct {
	Player string `json:"player,omitempty"`
	Team   string `json:"team,omitempty"`
	Series string `json:"series,omitempty"`
	Year   string `json:"year,omitempty"`
}

// DetectedCard is one card found in an uploaded image, awaiting review.
type DetectedCard struct {
	ID         string         `json:"id"`
	Bounds     geometry.Rect  `json:"bounds"`
	Confidence float64        `json:"confidence"`
	Status     CardStatus     `json:"status"`
	ImagePath  string         `json:"image_path,omitempty"`
	ImageURL   string         `json:"image_url,omitempty"`
	SourceFile string         `json:"source_file,omitempty"`
	Metadata   *CardMetadata  `json:"metadata,omitempty"`
	Adjustment CardAdjustment `json:"adjustment"`
	CreatedAt  time.Time      `json:"created_at"`
}

// DisplayName returns the name used for name-sorting and search: the player
// name when known, otherwise the card id.
func (c *DetectedCard) DisplayName() string {
	if c.Metadata != nil && c.Metadata.Player != "" {
		return c.Metadata.Player
	}
	return c.ID
}

// QueuedFile is an uploaded image waiting for detection.
type QueuedFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	QueuedAt time.Time `json:"queued_at"`
}

// ConfidenceRange bounds are inclusive.
type ConfidenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DateRange filters cards by detection time. Zero values leave that end
// unbounded.
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// StatusAll disables status filtering.
const StatusAll = "all"

// FilterOptions are pure query criteria over a review session's cards.
type FilterOptions struct {
	Status     string          `json:"status"`
	Confidence ConfidenceRange `json:"confidence"`
	DateRange  DateRange       `json:"date_range"`
	SearchTerm string          `json:"search_term"`
}

// DefaultFilters matches every card.
func DefaultFilters() FilterOptions {
	return FilterOptions{
		Status:     StatusAll,
		Confidence: ConfidenceRange{Min: 0, Max: 1},
	}
}

// SortField selects the key for ordering the filtered view.
type SortField string

const (
	SortByConfidence SortField = "confidence"
	SortByDate       SortField = "date"
	SortByName       SortField = "name"
	SortByStatus     SortField = "status"
)

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CardVisibility controls marketplace exposure of a created card.
type CardVisibility string

const (
	VisibilityPrivate CardVisibility = "private"
	VisibilityPublic  CardVisibility = "public"
)

// CreatedCard is the durable record written when a reviewed card leaves the
// pipeline.
type CreatedCard struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	ImagePath  string         `json:"image_path"`
	Rarity     string         `json:"rarity"`
	Tags       []string       `json:"tags,omitempty"`
	Player     string         `json:"player,omitempty"`
	Team       string         `json:"team,omitempty"`
	Series     string         `json:"series,omitempty"`
	Year       string         `json:"year,omitempty"`
	Confidence float64        `json:"confidence"`
	Visibility CardVisibility `json:"visibility"`
	ForSale    bool           `json:"for_sale"`
	Price      float64        `json:"price,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
