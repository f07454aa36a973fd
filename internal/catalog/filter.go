package catalog

import (
	"sort"
	"strings"

	"github.com/cardbinder/cardbinder/internal/models"
)

// SetFilters replaces the filter criteria for the derived view. Zero-valued
// fields fall back to their defaults, so a client that omits the status or
// the confidence range does not accidentally hide every card.
func (c *Catalog) SetFilters(f models.FilterOptions) {
	c.mu.Lock()
	if f.Status == "" {
		f.Status = models.StatusAll
	}
	if f.Confidence == (models.ConfidenceRange{}) {
		f.Confidence = models.ConfidenceRange{Min: 0, Max: 1}
	}
	c.filters = f
	c.mu.Unlock()
}

// Filters returns the current filter criteria.
func (c *Catalog) Filters() models.FilterOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

// SetSort replaces the sort key and order for the derived view.
func (c *Catalog) SetSort(field models.SortField, order models.SortOrder) {
	c.mu.Lock()
	c.sortBy = field
	c.sortOrder = order
	c.mu.Unlock()
}

// Sort returns the current sort key and order.
func (c *Catalog) Sort() (models.SortField, models.SortOrder) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortBy, c.sortOrder
}

// FilteredCards derives the display list: filter by status, confidence
// range, and search term, then stable-sort by the configured field. Equal
// keys keep their insertion (id) order.
func (c *Catalog) FilteredCards() []models.DetectedCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filteredLocked()
}

// filteredLocked computes the view with the lock already held.
func (c *Catalog) filteredLocked() []models.DetectedCard {
	all := make([]models.DetectedCard, 0, len(c.cards))
	for _, card := range c.cards {
		all = append(all, *card)
	}
	// Deterministic base order before the stable sort.
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	out := all[:0]
	for _, card := range all {
		if matchesFilters(&card, c.filters) {
			out = append(out, card)
		}
	}
	sortCards(out, c.sortBy, c.sortOrder)
	return out
}

func matchesFilters(card *models.DetectedCard, f models.FilterOptions) bool {
	if f.Status != "" && f.Status != models.StatusAll && string(card.Status) != f.Status {
		return false
	}
	if card.Confidence < f.Confidence.Min || card.Confidence > f.Confidence.Max {
		return false
	}
	if !f.DateRange.Start.IsZero() && card.CreatedAt.Before(f.DateRange.Start) {
		return false
	}
	if !f.DateRange.End.IsZero() && card.CreatedAt.After(f.DateRange.End) {
		return false
	}
	if f.SearchTerm != "" && !matchesSearch(card, f.SearchTerm) {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match across the player,
// team, and series metadata fields.
func matchesSearch(card *models.DetectedCard, term string) bool {
	if card.Metadata == nil {
		return false
	}
	term = strings.ToLower(term)
	for _, field := range []string{card.Metadata.Player, card.Metadata.Team, card.Metadata.Series} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// sortCards stable-sorts in place so cards comparing equal keep their
// original relative order regardless of sort implementation.
func sortCards(cards []models.DetectedCard, field models.SortField, order models.SortOrder) {
	less := func(a, b *models.DetectedCard) bool {
		switch field {
		case models.SortByConfidence:
			return a.Confidence < b.Confidence
		case models.SortByDate:
			return a.CreatedAt.Before(b.CreatedAt)
		case models.SortByName:
			return a.DisplayName() < b.DisplayName()
		case models.SortByStatus:
			return a.Status < b.Status
		default:
			return false
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if order == models.SortDesc {
			return less(&cards[j], &cards[i])
		}
		return less(&cards[i], &cards[j])
	})
}
