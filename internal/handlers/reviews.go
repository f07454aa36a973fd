package handlers

import (
	"net/http"
	"strings"
)

func (h *Handler) HandleReviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.reviewStore.GetAll()
		views := make([]reviewView, 0, len(sessions))
		for _, session := range sessions {
			views = append(views, viewOf(session))
		}
		h.writeJSON(w, views)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleReviewDetail routes /api/reviews/{id}[/...] to the per-session
// operations.
func (h *Handler) HandleReviewDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/reviews/")
	parts := strings.SplitN(path, "/", 3)
	sessionID := parts[0]
	if sessionID == "" {
		h.writeError(w, "Session id required", http.StatusBadRequest)
		return
	}

	session, ok := h.getReviewOrError(w, sessionID)
	if !ok {
		return
	}

	if len(parts) == 1 || parts[1] == "" {
		switch r.Method {
		case "GET":
			h.writeJSON(w, viewOf(session))
		case "DELETE":
			h.reviewStore.Delete(sessionID)
			h.writeJSON(w, map[string]any{"deleted": sessionID})
		default:
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "detect":
		h.handleDetect(w, r, session)
	case "selection":
		h.handleSelection(w, r, session)
	case "filters":
		h.handleFilters(w, r, session)
	case "queue":
		h.handleQueue(w, r, session, parts)
	case "cards":
		h.handleCards(w, r, session, parts)
	case "create-cards":
		h.handleCreateCards(w, r, session)
	default:
		h.writeError(w, "Unknown review operation: "+parts[1], http.StatusNotFound)
	}
}
