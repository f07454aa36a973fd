package storage

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cardbinder/cardbinder/internal/utils"
)

// ImageStore writes uploaded images to disk under content-hash-derived
// names, so re-uploads of the same bytes land on the same file.
type ImageStore struct {
	dir string
}

// NewImageStore creates the uploads directory if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Dir returns the uploads directory path.
func (s *ImageStore) Dir() string {
	return s.dir
}

// SavedImage describes a stored upload.
type SavedImage struct {
	Filename string
	Path     string
	Width    int
	Height   int
}

// Save writes image data under an md5-derived filename, keeping the original
// extension, and probes its dimensions. Dimension failures are non-fatal.
func (s *ImageStore) Save(data []byte, originalName string) (*SavedImage, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}
	filename := utils.CalculateDataMD5(data) + ext
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	slog.Info("Image saved", "filename", filename, "original", originalName)

	width, height, err := imageDimensions(path)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "error", err)
		width, height = 0, 0
	}

	return &SavedImage{
		Filename: filename,
		Path:     path,
		Width:    width,
		Height:   height,
	}, nil
}

func imageDimensions(imagePath string) (int, int, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
