// Package catalog implements the review-session state machine: the upload
// queue, the detected-card map, the selection set, and the filtered view
// derived from them. One Catalog owns the state for one review session; all
// mutation goes through its methods and observers are notified through typed
// events.
package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/cardbinder/cardbinder/internal/adjust"
	"github.com/cardbinder/cardbinder/internal/geometry"
	"github.com/cardbinder/cardbinder/internal/models"
)

// EventType identifies catalog state changes.
type EventType int

const (
	EventQueueChanged EventType = iota
	EventCardsDetected
	EventSelectionChanged
	EventCardChanged
	EventCardsDeleted
	EventCardsCreated
	EventCleared
)

// EventListener receives catalog events. Listeners run outside the catalog
// lock and may call back into the catalog.
type EventListener func(EventType)

// Catalog holds one review session's state.
type Catalog struct {
	mu sync.RWMutex

	id        string
	createdAt time.Time

	queue    []models.QueuedFile
	cards    map[string]*models.DetectedCard
	selected map[string]struct{}

	filters   models.FilterOptions
	sortBy    models.SortField
	sortOrder models.SortOrder

	processing bool

	listeners map[EventType][]EventListener
}

// New creates an empty catalog for the given session id.
func New(id string) *Catalog {
	return &Catalog{
		id:        id,
		createdAt: time.Now(),
		cards:     make(map[string]*models.DetectedCard),
		selected:  make(map[string]struct{}),
		filters:   models.DefaultFilters(),
		sortBy:    models.SortByConfidence,
		sortOrder: models.SortDesc,
		listeners: make(map[EventType][]EventListener),
	}
}

// ID returns the session id.
func (c *Catalog) ID() string {
	return c.id
}

// CreatedAt returns the session creation time.
func (c *Catalog) CreatedAt() time.Time {
	return c.createdAt
}

// AddListener registers a listener for the given event.
func (c *Catalog) AddListener(event EventType, listener EventListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[event] = append(c.listeners[event], listener)
}

// notify fires listeners for event. Callers must not hold the lock.
func (c *Catalog) notify(event EventType) {
	c.mu.RLock()
	listeners := append([]EventListener(nil), c.listeners[event]...)
	c.mu.RUnlock()
	for _, l := range listeners {
		l(event)
	}
}

// SetProcessing marks the session as running a detection batch.
func (c *Catalog) SetProcessing(v bool) {
	c.mu.Lock()
	c.processing = v
	c.mu.Unlock()
}

// Processing reports whether a detection batch is in flight.
func (c *Catalog) Processing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processing
}

// AddToQueue appends files to the upload queue.
func (c *Catalog) AddToQueue(files ...models.QueuedFile) {
	if len(files) == 0 {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, files...)
	c.mu.Unlock()
	c.notify(EventQueueChanged)
}

// RemoveFromQueue removes the entry at index i. Out-of-range indexes are a
// no-op.
func (c *Catalog) RemoveFromQueue(i int) {
	c.mu.Lock()
	if i < 0 || i >= len(c.queue) {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue[:i], c.queue[i+1:]...)
	c.mu.Unlock()
	c.notify(EventQueueChanged)
}

// ClearQueue empties the upload queue.
func (c *Catalog) ClearQueue() {
	c.mu.Lock()
	c.queue = nil
	c.mu.Unlock()
	c.notify(EventQueueChanged)
}

// Queue returns a copy of the upload queue.
func (c *Catalog) Queue() []models.QueuedFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.QueuedFile(nil), c.queue...)
}

// AddDetectedCards inserts detection results into the card map. Ids are
// caller-generated; a duplicate id overwrites the previous card (last write
// wins).
func (c *Catalog) AddDetectedCards(cards []models.DetectedCard) {
	if len(cards) == 0 {
		return
	}
	c.mu.Lock()
	for i := range cards {
		card := cards[i]
		if card.Status == "" {
			card.Status = models.StatusDetected
		}
		if card.Adjustment == (models.CardAdjustment{}) {
			card.Adjustment = models.DefaultAdjustment()
		}
		if card.CreatedAt.IsZero() {
			card.CreatedAt = time.Now()
		}
		c.cards[card.ID] = &card
	}
	c.mu.Unlock()
	c.notify(EventCardsDetected)
}

// Card returns a copy of the card with the given id.
func (c *Catalog) Card(id string) (models.DetectedCard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	card, ok := c.cards[id]
	if !ok {
		return models.DetectedCard{}, false
	}
	return *card, true
}

// Cards returns copies of all cards, ordered by id for determinism.
func (c *Catalog) Cards() []models.DetectedCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.DetectedCard, 0, len(c.cards))
	for _, card := range c.cards {
		out = append(out, *card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of detected cards.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cards)
}

// SelectCard adds id to the selection. Unknown ids are ignored.
func (c *Catalog) SelectCard(id string) {
	c.mu.Lock()
	if _, ok := c.cards[id]; !ok {
		c.mu.Unlock()
		return
	}
	c.selected[id] = struct{}{}
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// DeselectCard removes id from the selection.
func (c *Catalog) DeselectCard(id string) {
	c.mu.Lock()
	delete(c.selected, id)
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// ToggleCardSelection flips the selection state of id. Toggling twice
// restores the prior state.
func (c *Catalog) ToggleCardSelection(id string) {
	c.mu.Lock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		if _, exists := c.cards[id]; !exists {
			c.mu.Unlock()
			return
		}
		c.selected[id] = struct{}{}
	}
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// IsSelected reports whether id is selected.
func (c *Catalog) IsSelected(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.selected[id]
	return ok
}

// SelectedIDs returns the selected ids sorted lexicographically, skipping
// any id no longer present in the card map.
func (c *Catalog) SelectedIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		if _, ok := c.cards[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SelectedCards returns copies of the selected cards.
func (c *Catalog) SelectedCards() []models.DetectedCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.DetectedCard, 0, len(c.selected))
	for id := range c.selected {
		if card, ok := c.cards[id]; ok {
			out = append(out, *card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SelectAllVisible unions the currently-filtered ids into the selection.
// Selections made under earlier filters are kept, so repeated calls across
// filter changes accumulate.
func (c *Catalog) SelectAllVisible() {
	c.mu.Lock()
	for _, card := range c.filteredLocked() {
		c.selected[card.ID] = struct{}{}
	}
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// ClearSelection empties the selection unconditionally.
func (c *Catalog) ClearSelection() {
	c.mu.Lock()
	c.selected = make(map[string]struct{})
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// DeleteSelected removes all selected cards from the map and clears the
// selection, returning the number deleted.
func (c *Catalog) DeleteSelected() int {
	c.mu.Lock()
	n := 0
	for id := range c.selected {
		if _, ok := c.cards[id]; ok {
			delete(c.cards, id)
			n++
		}
	}
	c.selected = make(map[string]struct{})
	c.mu.Unlock()
	if n > 0 {
		c.notify(EventCardsDeleted)
	}
	c.notify(EventSelectionChanged)
	return n
}

// EditCardBounds replaces the detected bounds of one card. Absent ids are a
// no-op; the return value reports whether the card existed.
func (c *Catalog) EditCardBounds(id string, bounds geometry.Rect) bool {
	c.mu.Lock()
	card, ok := c.cards[id]
	if ok {
		card.Bounds = bounds
	}
	c.mu.Unlock()
	if ok {
		c.notify(EventCardChanged)
	}
	return ok
}

// SetAdjustment replaces one card's adjustment after clamping it to the
// toolbar ranges.
func (c *Catalog) SetAdjustment(id string, a models.CardAdjustment) bool {
	a = adjust.Clamp(a)
	c.mu.Lock()
	card, ok := c.cards[id]
	if ok {
		card.Adjustment = a
	}
	c.mu.Unlock()
	if ok {
		c.notify(EventCardChanged)
	}
	return ok
}

// SetStatus updates one card's pipeline status.
func (c *Catalog) SetStatus(id string, status models.CardStatus) bool {
	c.mu.Lock()
	card, ok := c.cards[id]
	if ok {
		card.Status = status
	}
	c.mu.Unlock()
	if ok {
		c.notify(EventCardChanged)
	}
	return ok
}

// ClearDetectedCards empties both the card map and the selection. Used when
// starting a new batch or aborting a review.
func (c *Catalog) ClearDetectedCards() {
	c.mu.Lock()
	c.cards = make(map[string]*models.DetectedCard)
	c.selected = make(map[string]struct{})
	c.mu.Unlock()
	c.notify(EventCleared)
}

// MarkCreated clears detection state after a successful persistence handoff.
func (c *Catalog) MarkCreated() {
	c.mu.Lock()
	c.cards = make(map[string]*models.DetectedCard)
	c.selected = make(map[string]struct{})
	c.queue = nil
	c.mu.Unlock()
	c.notify(EventCardsCreated)
}
