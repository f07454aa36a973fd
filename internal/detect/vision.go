package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/cardbinder/cardbinder/internal/gemini"
	"github.com/cardbinder/cardbinder/internal/geometry"
	"github.com/cardbinder/cardbinder/internal/ollama"
	"github.com/cardbinder/cardbinder/internal/openai"
	"github.com/cardbinder/cardbinder/internal/providers"
)

// visionDetector asks a vision-capable LLM for card bounding boxes and
// parses the JSON array out of its response.
type visionDetector struct {
	provider providers.Provider
	model    string
}

func newVisionDetector(name, model string) (*visionDetector, error) {
	var p providers.Provider
	switch name {
	case "ollama":
		p = ollama.New()
	case "openai":
		p = openai.New()
	case "gemini":
		p = gemini.New()
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", name)
	}
	return &visionDetector{provider: p, model: model}, nil
}

// DetectCards implements Detector.
func (d *visionDetector) DetectCards(ctx context.Context, imagePath string) ([]Detection, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(imagePath))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	response, err := d.provider.ExtractText(ctx, providers.Config{
		Model:       d.model,
		Temperature: 0.1, // low temperature for consistent box output
		Prompt:      buildDetectionPrompt(),
		Image:       imageData,
		ImageMIME:   mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("vision provider failed: %w", err)
	}

	return parseDetections(response)
}

func buildDetectionPrompt() string {
	return `You are looking at a photo containing one or more trading cards.

Find every individual card in the image. Respond with ONLY a JSON array, no
other text. Each element must be an object of the form:

  {"x": <left edge in pixels>, "y": <top edge in pixels>, "width": <pixels>, "height": <pixels>, "confidence": <0.0-1.0>}

Use the original image pixel coordinates. Include partially visible cards
with lower confidence. If no cards are visible, respond with [].`
}

// parseDetections extracts the JSON array from a model response, tolerating
// markdown code fences and surrounding prose.
func parseDetections(response string) ([]Detection, error) {
	payload := extractJSONArray(response)
	if payload == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var raw []struct {
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}

	out := make([]Detection, 0, len(raw))
	for _, r := range raw {
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		out = append(out, Detection{
			Bounds:     geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
			Confidence: clamp01(r.Confidence),
		})
	}
	return out, nil
}

// extractJSONArray returns the outermost JSON array in the text, stripping
// any markdown fences.
func extractJSONArray(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
