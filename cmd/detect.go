package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardbinder/cardbinder/internal/detect"
	"github.com/cardbinder/cardbinder/internal/ingest"
	"github.com/cardbinder/cardbinder/internal/models"
)

func newDetectCmd() *cobra.Command {
	var provider string
	var model string
	var output string

	cmd := &cobra.Command{
		Use:   "detect [directory]",
		Short: "Run card detection over a directory of images",
		Long: `Detects trading cards in every image in a directory and writes the
resulting bounding boxes as JSON, without starting a server.`,
		Example: `  # Heuristic detection over ./scans
  cardbinder detect ./scans

  # Vision-LLM detection
  cardbinder detect ./scans --provider ollama --model mistral-small3.2:24b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("failed to read directory: %w", err)
			}

			var files []models.QueuedFile
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				path := filepath.Join(dir, entry.Name())
				if !ingest.IsImageFile(path) {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				files = append(files, models.QueuedFile{
					Name:     entry.Name(),
					Path:     path,
					Size:     info.Size(),
					QueuedAt: time.Now(),
				})
			}
			sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

			if len(files) == 0 {
				return fmt.Errorf("no images found in %s", dir)
			}
			slog.Info("Running detection", "dir", dir, "files", len(files), "provider", provider)

			sessionID := fmt.Sprintf("batch_%d", time.Now().Unix())
			service := detect.NewService()
			cards, err := service.DetectBatch(cmd.Context(), sessionID, files, provider, model)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(cards); err != nil {
				return fmt.Errorf("failed to write results: %w", err)
			}

			slog.Info("Detection complete", "cards", len(cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Detection provider (heuristic, ollama, openai, gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name for LLM providers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write results to file instead of stdout")

	return cmd
}
