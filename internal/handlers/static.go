package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
)

// HandleStatic serves uploaded images at /static/uploads/{filename}.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/uploads/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.imageStore.Dir(), name))
}
