package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/detect"
	"github.com/cardbinder/cardbinder/internal/images"
	"github.com/cardbinder/cardbinder/internal/models"
	"github.com/cardbinder/cardbinder/internal/repository"
	"github.com/cardbinder/cardbinder/internal/storage"
)

type Handler struct {
	reviewStore *storage.ReviewStore
	imageStore  *storage.ImageStore
	imageCache  *images.Cache
	detector    *detect.Service
	cards       *repository.CardRepository
}

// New wires a handler over the given stores. The repository may be nil when
// the server runs without persistence (review-only mode).
func New(imageStore *storage.ImageStore, cards *repository.CardRepository) *Handler {
	cache, err := images.NewCache(filepath.Join(imageStore.Dir(), ".cache"), 0, 0)
	if err != nil {
		// URL uploads fall back to uncached downloads.
		slog.Warn("Failed to create image cache", "error", err)
	}
	return &Handler{
		reviewStore: storage.New(),
		imageStore:  imageStore,
		imageCache:  cache,
		detector:    detect.NewService(),
		cards:       cards,
	}
}

// ReviewStore exposes the session store, used by the watch-folder ingest.
func (h *Handler) ReviewStore() *storage.ReviewStore {
	return h.reviewStore
}

// reviewView is the JSON shape of one review session.
type reviewView struct {
	ID         string                `json:"id"`
	CreatedAt  string                `json:"created_at"`
	Processing bool                  `json:"processing"`
	Queue      []models.QueuedFile   `json:"queue"`
	Cards      []models.DetectedCard `json:"cards"`
	TotalCards int                   `json:"total_cards"`
	Selected   []string              `json:"selected"`
	Filters    models.FilterOptions  `json:"filters"`
	SortBy     models.SortField      `json:"sort_by"`
	SortOrder  models.SortOrder      `json:"sort_order"`
}

func viewOf(c *catalog.Catalog) reviewView {
	sortBy, sortOrder := c.Sort()
	return reviewView{
		ID:         c.ID(),
		CreatedAt:  c.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
		Processing: c.Processing(),
		Queue:      c.Queue(),
		Cards:      c.FilteredCards(),
		TotalCards: c.Len(),
		Selected:   c.SelectedIDs(),
		Filters:    c.Filters(),
		SortBy:     sortBy,
		SortOrder:  sortOrder,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getReviewOrError(w http.ResponseWriter, sessionID string) (*catalog.Catalog, bool) {
	session, exists := h.reviewStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Review session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
