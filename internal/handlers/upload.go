package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cardbinder/cardbinder/internal/models"
)

const maxUploadBytes = 10 * 1024 * 1024

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with an image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
		Session  string `json:"session"`
	}

	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	imageData, err := h.fetchImage(r, request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Extract filename from URL
	parts := strings.Split(request.ImageURL, "/")
	filename := parts[len(parts)-1]
	if filename == "" {
		filename = "image.jpg"
	}

	sessionID, queued, err := h.enqueueUpload(imageData, filename, request.Session)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"session_id": sessionID,
		"message":    "Successfully queued 1 image",
		"queued":     queued,
		"source":     "url",
	})
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	session := r.FormValue("session")

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		h.writeError(w, "No files in upload", http.StatusBadRequest)
		return
	}

	sessionID := ""
	queued := 0
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}

		fileData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if len(fileData) >= maxUploadBytes {
			h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
			return
		}

		id, n, err := h.enqueueUpload(fileData, header.Filename, firstNonEmpty(session, sessionID))
		if err != nil {
			h.writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sessionID = id
		queued += n
	}

	h.writeJSON(w, map[string]any{
		"session_id": sessionID,
		"message":    fmt.Sprintf("Successfully queued %d image(s)", queued),
		"queued":     queued,
	})
}

// enqueueUpload stores the image and adds it to the session's upload queue,
// creating the session when needed. Session ids default to the filename stem
// plus a timestamp.
func (h *Handler) enqueueUpload(data []byte, filename, sessionID string) (string, int, error) {
	saved, err := h.imageStore.Save(data, filename)
	if err != nil {
		return "", 0, err
	}

	if sessionID == "" {
		base := filename
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[:i]
		}
		sessionID = fmt.Sprintf("%s_%d", base, time.Now().Unix())
	}

	session := h.reviewStore.GetOrCreate(sessionID)
	session.AddToQueue(models.QueuedFile{
		Name:     filename,
		Path:     saved.Path,
		Size:     int64(len(data)),
		QueuedAt: time.Now(),
	})
	return sessionID, 1, nil
}

// fetchImage resolves a remote image through the shared cache, falling back
// to a direct download when the cache is unavailable.
func (h *Handler) fetchImage(r *http.Request, imageURL string) ([]byte, error) {
	if h.imageCache != nil {
		data, err := h.imageCache.Get(r.Context(), imageURL)
		if err != nil {
			return nil, err
		}
		if len(data) > maxUploadBytes {
			return nil, fmt.Errorf("image too large (max 10MB)")
		}
		return data, nil
	}
	return h.downloadImage(r, imageURL)
}

func (h *Handler) downloadImage(r *http.Request, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return imageData, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
