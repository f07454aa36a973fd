package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/detect"
	"github.com/cardbinder/cardbinder/internal/ingest"
	"github.com/cardbinder/cardbinder/internal/models"
	"github.com/cardbinder/cardbinder/internal/repository"
)

func newWatchCmd() *cobra.Command {
	var provider string
	var model string
	var dbPath string
	var minConfidence float64

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a folder and auto-catalog card scans dropped into it",
		Long: `Watches a directory for new images. Each dropped image is run through
detection, and detected cards at or above the confidence threshold are
persisted to the catalog without manual review.`,
		Example: `  # Auto-catalog anything dropped into ./inbox
  cardbinder watch ./inbox --min-confidence 0.7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			repo, err := repository.New(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			service := detect.NewService()
			sessionID := fmt.Sprintf("watch_%d", time.Now().Unix())
			session := catalog.New(sessionID)

			err = ingest.Watch(cmd.Context(), dir, func(file models.QueuedFile) {
				session.AddToQueue(file)
				queue := session.Queue()
				index := len(queue) - 1

				cards, err := service.DetectBatch(cmd.Context(), fmt.Sprintf("%s_%d", sessionID, index), []models.QueuedFile{file}, provider, model)
				if err != nil {
					slog.Error("Detection failed", "file", file.Name, "error", err)
					return
				}
				session.RemoveFromQueue(index)

				kept := make([]models.CreatedCard, 0, len(cards))
				for _, card := range cards {
					if card.Confidence < minConfidence {
						continue
					}
					kept = append(kept, models.CreatedCard{
						Title:      card.DisplayName(),
						ImagePath:  card.ImagePath,
						Confidence: card.Confidence,
					})
				}
				if len(kept) == 0 {
					slog.Warn("No cards above confidence threshold", "file", file.Name, "detected", len(cards))
					return
				}

				created, err := repo.CreateBatch(cmd.Context(), kept)
				if err != nil {
					slog.Error("Failed to persist cards", "file", file.Name, "error", err)
					return
				}
				slog.Info("Cataloged cards", "file", file.Name, "created", created)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Detection provider (heuristic, ollama, openai, gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name for LLM providers")
	cmd.Flags().StringVar(&dbPath, "db", "data/cards.db", "Path to the card catalog database")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.6, "Minimum detection confidence to auto-catalog")

	return cmd
}
