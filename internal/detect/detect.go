// Package detect finds individual trading cards in uploaded photos. It
// supports a pure-Go heuristic detector plus vision-LLM providers (Ollama,
// OpenAI, Gemini) that return bounding boxes as JSON.
package detect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cardbinder/cardbinder/internal/geometry"
	"github.com/cardbinder/cardbinder/internal/models"
)

// Detection is one raw bounding box found in a source image, before it is
// turned into a catalog card.
type Detection struct {
	Bounds     geometry.Rect `json:"bounds"`
	Confidence float64       `json:"confidence"`
}

// Detector finds cards in a single image file.
type Detector interface {
	DetectCards(ctx context.Context, imagePath string) ([]Detection, error)
}

// Service dispatches detection to the configured provider.
type Service struct{}

// NewService creates a new detection service
func NewService() *Service {
	return &Service{}
}

// DetectorFor resolves a Detector from a provider name, falling back to the
// DETECTION_PROVIDER environment variable and then the heuristic detector.
func (s *Service) DetectorFor(provider, model string) (Detector, error) {
	if provider == "" {
		provider = os.Getenv("DETECTION_PROVIDER")
		if provider == "" {
			provider = "heuristic"
		}
	}
	if model == "" {
		model = defaultModel(provider)
	}

	switch provider {
	case "heuristic":
		return NewHeuristicDetector(), nil
	case "ollama", "openai", "gemini":
		return newVisionDetector(provider, model)
	default:
		return nil, fmt.Errorf("unsupported detection provider: %s", provider)
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-4o"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-1.5-flash"
		}
		return model
	default:
		return ""
	}
}

// DetectBatch runs detection over a session's upload queue sequentially and
// returns catalog-ready cards. Per-file failures are logged and skipped; an
// all-empty batch is a warning for the caller, not an error. Card ids follow
// the sessionID_fileIndex_cardIndex convention.
func (s *Service) DetectBatch(ctx context.Context, sessionID string, files []models.QueuedFile, provider, model string) ([]models.DetectedCard, error) {
	detector, err := s.DetectorFor(provider, model)
	if err != nil {
		return nil, err
	}

	var cards []models.DetectedCard
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return cards, err
		}
		detections, err := detector.DetectCards(ctx, file.Path)
		if err != nil {
			slog.Error("Detection failed for file", "file", file.Name, "error", err)
			continue
		}
		slog.Info("Detected cards", "file", file.Name, "count", len(detections))
		for j, d := range detections {
			cards = append(cards, models.DetectedCard{
				ID:         fmt.Sprintf("%s_%d_%d", sessionID, i, j),
				Bounds:     d.Bounds,
				Confidence: clamp01(d.Confidence),
				Status:     models.StatusDetected,
				ImagePath:  file.Path,
				SourceFile: file.Name,
				Adjustment: models.DefaultAdjustment(),
				CreatedAt:  time.Now(),
			})
		}
	}

	if len(cards) == 0 {
		slog.Warn("No cards detected in batch", "session_id", sessionID, "files", len(files))
	}
	return cards, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
