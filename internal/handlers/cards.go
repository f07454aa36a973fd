package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/geometry"
	"github.com/cardbinder/cardbinder/internal/models"
)

// handleDetect runs detection over the session's upload queue and merges the
// results into the card map.
func (h *Handler) handleDetect(w http.ResponseWriter, r *http.Request, session *catalog.Catalog) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
	}
	// An empty body means defaults; ContentLength is unreliable for
	// chunked requests.
	if err := decodeJSON(r, &request); err != nil && err != io.EOF {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	queue := session.Queue()
	if len(queue) == 0 {
		h.writeError(w, "Upload queue is empty", http.StatusBadRequest)
		return
	}

	session.SetProcessing(true)
	defer session.SetProcessing(false)

	cards, err := h.detector.DetectBatch(r.Context(), session.ID(), queue, request.Provider, request.Model)
	if err != nil {
		h.writeError(w, "Detection failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	session.AddDetectedCards(cards)
	session.ClearQueue()

	response := map[string]any{
		"session_id": session.ID(),
		"detected":   len(cards),
	}
	if len(cards) == 0 {
		response["warning"] = "No cards detected in uploaded images"
	}
	h.writeJSON(w, response)
}

// handleSelection applies one selection action to the session.
func (h *Handler) handleSelection(w http.ResponseWriter, r *http.Request, session *catalog.Catalog) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Action string `json:"action"`
		CardID string `json:"card_id"`
	}
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch request.Action {
	case "select":
		session.SelectCard(request.CardID)
	case "deselect":
		session.DeselectCard(request.CardID)
	case "toggle":
		session.ToggleCardSelection(request.CardID)
	case "select-visible":
		session.SelectAllVisible()
	case "clear":
		session.ClearSelection()
	default:
		h.writeError(w, "Invalid action. Must be 'select', 'deselect', 'toggle', 'select-visible', or 'clear'", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]any{"selected": session.SelectedIDs()})
}

// handleFilters replaces the session's filter and sort criteria.
func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request, session *catalog.Catalog) {
	if r.Method != "PUT" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Filters   models.FilterOptions `json:"filters"`
		SortBy    models.SortField     `json:"sort_by"`
		SortOrder models.SortOrder     `json:"sort_order"`
	}
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	session.SetFilters(request.Filters)
	if request.SortBy != "" {
		order := request.SortOrder
		if order == "" {
			order = models.SortAsc
		}
		session.SetSort(request.SortBy, order)
	}

	h.writeJSON(w, viewOf(session))
}

// handleQueue removes one entry (DELETE .../queue/{index}) or clears the
// queue (DELETE .../queue).
func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request, session *catalog.Catalog, parts []string) {
	if r.Method != "DELETE" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(parts) < 3 || parts[2] == "" {
		session.ClearQueue()
		h.writeJSON(w, map[string]any{"queue": session.Queue()})
		return
	}

	index, err := strconv.Atoi(parts[2])
	if err != nil {
		h.writeError(w, "Invalid queue index: "+parts[2], http.StatusBadRequest)
		return
	}
	session.RemoveFromQueue(index)
	h.writeJSON(w, map[string]any{"queue": session.Queue()})
}

// handleCards routes card-level operations:
//
//	DELETE /api/reviews/{id}/cards                    delete selected
//	PUT    /api/reviews/{id}/cards/{cardID}/bounds     replace bounds
//	PUT    /api/reviews/{id}/cards/{cardID}/adjustment replace adjustment
func (h *Handler) handleCards(w http.ResponseWriter, r *http.Request, session *catalog.Catalog, parts []string) {
	if len(parts) < 3 || parts[2] == "" {
		if r.Method != "DELETE" {
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		deleted := session.DeleteSelected()
		slog.Info("Deleted cards", "session_id", session.ID(), "count", deleted)
		h.writeJSON(w, map[string]any{
			"deleted": deleted,
			"message": fmt.Sprintf("Deleted %d cards", deleted),
		})
		return
	}

	// parts[2] is "{cardID}/bounds" or "{cardID}/adjustment"
	cardID, op := splitCardOp(parts[2])
	if cardID == "" || op == "" {
		h.writeError(w, "Invalid card path", http.StatusBadRequest)
		return
	}
	if r.Method != "PUT" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch op {
	case "bounds":
		var bounds geometry.Rect
		if err := decodeJSON(r, &bounds); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if !session.EditCardBounds(cardID, bounds) {
			h.writeError(w, "Card not found: "+cardID, http.StatusNotFound)
			return
		}
	case "adjustment":
		var adjustment models.CardAdjustment
		if err := decodeJSON(r, &adjustment); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if !session.SetAdjustment(cardID, adjustment) {
			h.writeError(w, "Card not found: "+cardID, http.StatusNotFound)
			return
		}
	default:
		h.writeError(w, "Unknown card operation: "+op, http.StatusNotFound)
		return
	}

	card, _ := session.Card(cardID)
	h.writeJSON(w, card)
}

func splitCardOp(path string) (cardID, op string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return path, ""
}

// handleCreateCards persists the selected cards and clears detection state.
// Persistence failures abort the whole call; nothing is cleared on error.
func (h *Handler) handleCreateCards(w http.ResponseWriter, r *http.Request, session *catalog.Catalog) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.cards == nil {
		h.writeError(w, "Card persistence is not configured", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		Rarity     string                `json:"rarity"`
		Tags       []string              `json:"tags"`
		Visibility models.CardVisibility `json:"visibility"`
		ForSale    bool                  `json:"for_sale"`
		Price      float64               `json:"price"`
	}
	if err := decodeJSON(r, &request); err != nil && err != io.EOF {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	selected := session.SelectedCards()
	if len(selected) == 0 {
		h.writeError(w, "No cards selected", http.StatusBadRequest)
		return
	}

	records := make([]models.CreatedCard, 0, len(selected))
	for _, card := range selected {
		record := models.CreatedCard{
			Title:      card.DisplayName(),
			ImagePath:  card.ImagePath,
			Rarity:     request.Rarity,
			Tags:       request.Tags,
			Confidence: card.Confidence,
			Visibility: request.Visibility,
			ForSale:    request.ForSale,
			Price:      request.Price,
		}
		if card.Metadata != nil {
			record.Player = card.Metadata.Player
			record.Team = card.Metadata.Team
			record.Series = card.Metadata.Series
			record.Year = card.Metadata.Year
		}
		records = append(records, record)
	}

	created, err := h.cards.CreateBatch(r.Context(), records)
	if err != nil {
		h.writeError(w, "Failed to create cards: "+err.Error(), http.StatusInternalServerError)
		return
	}

	session.MarkCreated()
	slog.Info("Created cards", "session_id", session.ID(), "count", created)

	h.writeJSON(w, map[string]any{
		"created": created,
		"message": fmt.Sprintf("Created %d cards", created),
	})
}

// HandleCards serves the persisted catalog at /api/cards.
func (h *Handler) HandleCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.cards == nil {
		h.writeError(w, "Card persistence is not configured", http.StatusServiceUnavailable)
		return
	}
	cards, err := h.cards.List(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list cards: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if cards == nil {
		cards = []models.CreatedCard{}
	}
	h.writeJSON(w, cards)
}
