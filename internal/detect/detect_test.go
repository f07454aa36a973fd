package detect

import (
	"context"
	"fmt"
	"testing"

	"github.com/cardbinder/cardbinder/internal/models"
)

func TestDetectorForDefaultsToHeuristic(t *testing.T) {
	t.Setenv("DETECTION_PROVIDER", "")

	s := NewService()
	d, err := s.DetectorFor("", "")
	if err != nil {
		t.Fatalf("DetectorFor: %v", err)
	}
	if _, ok := d.(*HeuristicDetector); !ok {
		t.Errorf("default detector = %T, want *HeuristicDetector", d)
	}
}

func TestDetectorForEnvFallback(t *testing.T) {
	t.Setenv("DETECTION_PROVIDER", "heuristic")

	s := NewService()
	d, err := s.DetectorFor("", "")
	if err != nil {
		t.Fatalf("DetectorFor: %v", err)
	}
	if _, ok := d.(*HeuristicDetector); !ok {
		t.Errorf("detector = %T, want *HeuristicDetector", d)
	}
}

func TestDetectorForUnsupported(t *testing.T) {
	s := NewService()
	if _, err := s.DetectorFor("clip", ""); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestDefaultModel(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OLLAMA_MODEL", "")
	t.Setenv("GEMINI_MODEL", "")

	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "gpt-4o"},
		{"ollama", "mistral-small3.2:24b"},
		{"gemini", "gemini-1.5-flash"},
		{"heuristic", ""},
	}
	for _, tt := range tests {
		if got := defaultModel(tt.provider); got != tt.want {
			t.Errorf("defaultModel(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}

	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	if got := defaultModel("openai"); got != "gpt-4o-mini" {
		t.Errorf("env override = %q, want gpt-4o-mini", got)
	}
}

func TestParseDetections(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "plain array",
			input: `[{"x": 10, "y": 20, "width": 100, "height": 140, "confidence": 0.9}]`,
			want:  1,
		},
		{
			name: "markdown fenced",
			input: "```json\n[{\"x\": 0, \"y\": 0, \"width\": 50, \"height\": 70, \"confidence\": 0.8}]\n```",
			want: 1,
		},
		{
			name:  "surrounding prose",
			input: `Here are the cards I found: [{"x": 5, "y": 5, "width": 40, "height": 56, "confidence": 0.7}] Let me know if you need more.`,
			want:  1,
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  0,
		},
		{
			name:  "zero-size boxes dropped",
			input: `[{"x": 1, "y": 1, "width": 0, "height": 140, "confidence": 0.9}, {"x": 2, "y": 2, "width": 100, "height": 140, "confidence": 0.9}]`,
			want:  1,
		},
		{
			name:    "no array at all",
			input:   `I could not find any cards in this image.`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `[{"x": oops}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDetections(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDetections: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d detections, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseDetectionsClampsConfidence(t *testing.T) {
	got, err := parseDetections(`[{"x": 0, "y": 0, "width": 100, "height": 140, "confidence": 1.7}]`)
	if err != nil {
		t.Fatalf("parseDetections: %v", err)
	}
	if got[0].Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got[0].Confidence)
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", `[1, 2]`, `[1, 2]`},
		{"fenced", "```json\n[1]\n```", "[1]"},
		{"prose", "sure: [1] done", "[1]"},
		{"nothing", "no boxes here", ""},
		{"reversed brackets", "] then [", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONArray(tt.input); got != tt.want {
				t.Errorf("extractJSONArray(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectBatchIDsAndStatus(t *testing.T) {
	dir := t.TempDir()
	path := writeCardImage(t, dir, 200, 200, 50, 30, 50, 70)

	files := []models.QueuedFile{
		{Name: "scan.png", Path: path},
	}

	s := NewService()
	cards, err := s.DetectBatch(context.Background(), "sess1", files, "heuristic", "")
	if err != nil {
		t.Fatalf("DetectBatch: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}

	card := cards[0]
	if card.ID != "sess1_0_0" {
		t.Errorf("id = %q, want sess1_0_0", card.ID)
	}
	if card.Status != models.StatusDetected {
		t.Errorf("status = %q, want detected", card.Status)
	}
	if card.SourceFile != "scan.png" {
		t.Errorf("source file = %q", card.SourceFile)
	}
	if card.ImagePath != path {
		t.Errorf("image path = %q", card.ImagePath)
	}
	if card.Adjustment.Width != models.BaselineWidth || card.Adjustment.Scale != 1 {
		t.Errorf("adjustment not defaulted: %+v", card.Adjustment)
	}
	if card.CreatedAt.IsZero() {
		t.Error("created at not set")
	}
}

func TestDetectBatchSkipsFailedFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeCardImage(t, dir, 200, 200, 50, 30, 50, 70)

	files := []models.QueuedFile{
		{Name: "missing.png", Path: dir + "/missing.png"},
		{Name: "scan.png", Path: good},
	}

	s := NewService()
	cards, err := s.DetectBatch(context.Background(), "sess2", files, "heuristic", "")
	if err != nil {
		t.Fatalf("DetectBatch: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1 from the surviving file", len(cards))
	}
	// File index counts queue position, including the failed file.
	if cards[0].ID != "sess2_1_0" {
		t.Errorf("id = %q, want sess2_1_0", cards[0].ID)
	}
}

func TestDetectBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewService()
	_, err := s.DetectBatch(ctx, "sess3", []models.QueuedFile{{Name: "a", Path: "a"}}, "heuristic", "")
	if err == nil {
		t.Error("expected context error")
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{2.0, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			if got := clamp01(tt.in); got != tt.want {
				t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
