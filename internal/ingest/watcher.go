// Package ingest watches a drop directory and feeds new image files into a
// review session's upload queue.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cardbinder/cardbinder/internal/models"
)

// Handler receives each newly dropped image file.
type Handler func(file models.QueuedFile)

// imageExts are the extensions accepted from the drop directory.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// IsImageFile reports whether path has a recognized image extension.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Watch blocks watching dir until ctx is cancelled, invoking handle for each
// image file created in it. Files already present when the watch starts are
// ingested first.
func Watch(ctx context.Context, dir string, handle Handler) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// Pick up files dropped before the watcher started.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ingestFile(filepath.Join(dir, entry.Name()), handle)
	}

	slog.Info("Watching for new images", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			// Give the writer a moment to finish; drop events carry
			// no completion signal.
			time.Sleep(100 * time.Millisecond)
			ingestFile(event.Name, handle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", "error", err)
		}
	}
}

func ingestFile(path string, handle Handler) {
	if !IsImageFile(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	slog.Info("Ingesting image", "path", path)
	handle(models.QueuedFile{
		Name:     filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
		QueuedAt: time.Now(),
	})
}
